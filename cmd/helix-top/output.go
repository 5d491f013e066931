package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/twitch-helix-client/pkg/models"
)

const maxTitleWidth = 48

// renderOutput writes v to w in the chosen format. Tables are supported
// for the record types this CLI produces; json and yaml work for anything.
func renderOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so the yaml keys match the wire field
		// names instead of lowercased Go field names.
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var tree any
		if err := json.Unmarshal(data, &tree); err != nil {
			return err
		}
		out, err := yaml.Marshal(tree)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "table":
		return renderTable(w, v)
	default:
		return fmt.Errorf("unknown output format %q (want table, json, or yaml)", format)
	}
}

func renderTable(w io.Writer, v any) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	switch records := v.(type) {
	case []models.Stream:
		fmt.Fprintln(tw, "USER\tTITLE\tGAME\tVIEWERS\tLANG\tUPTIME")
		now := time.Now()
		for _, s := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
				s.UserLogin,
				truncate(s.Title, maxTitleWidth),
				s.GameName,
				s.ViewerCount,
				s.Language,
				formatUptime(s.Uptime(now)),
			)
		}
	case []models.Game:
		fmt.Fprintln(tw, "ID\tNAME")
		for _, g := range records {
			fmt.Fprintf(tw, "%s\t%s\n", g.ID, g.Name)
		}
	case []models.User:
		fmt.Fprintln(tw, "LOGIN\tDISPLAY NAME\tTYPE\tCREATED")
		for _, u := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				u.Login,
				u.DisplayName,
				broadcasterType(u),
				u.CreatedAt.Format("2006-01-02"),
			)
		}
	default:
		return fmt.Errorf("no table layout for %T", v)
	}

	return tw.Flush()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func formatUptime(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	d = d.Truncate(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%02dm", h, m)
}

func broadcasterType(u models.User) string {
	if u.BroadcasterType == "" {
		return "viewer"
	}
	return u.BroadcasterType
}
