// Package streamfilter compiles expr expressions into predicates over
// streams, so the CLI can narrow results with conditions like
//
//	viewer_count > 1000 && language == "en" && hasTag("Speedrun")
//
// Stream fields are exposed under their wire names (viewer_count, game_name,
// started_at, ...) together with a few helpers for tags, uptime, and
// case-insensitive string matching.
package streamfilter

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/Sternrassler/twitch-helix-client/pkg/models"
)

// Filter is a compiled stream predicate. Compile once, match many; a
// Filter is safe for concurrent use.
type Filter struct {
	program    *vm.Program
	expression string
}

// Compile compiles an expr expression into a Filter. The expression must
// evaluate to a boolean.
func Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("empty filter expression")
	}

	// Stream fields are injected per evaluation, so compilation only sees
	// the helpers and must allow the undefined field names.
	program, err := expr.Compile(expression,
		expr.Env(staticEnv()),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile filter expression: %w", err)
	}

	return &Filter{program: program, expression: expression}, nil
}

// Expression returns the original expression text.
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against one stream.
func (f *Filter) Match(s models.Stream) (bool, error) {
	result, err := expr.Run(f.program, runtimeEnv(s))
	if err != nil {
		return false, fmt.Errorf("evaluate filter against stream %s: %w", s.ID, err)
	}
	// AsBool guarantees a bool result at compile time.
	return result.(bool), nil
}

// Apply returns the streams matching the filter, preserving input order.
func (f *Filter) Apply(streams []models.Stream) ([]models.Stream, error) {
	matched := make([]models.Stream, 0, len(streams))
	for _, s := range streams {
		ok, err := f.Match(s)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

// staticEnv holds the helper functions available at compile time.
func staticEnv() map[string]any {
	return map[string]any{
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"endsWith": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"now":   time.Now,
		"hasTag": func(string) bool {
			return false
		},
		"uptimeMinutes": func() int {
			return 0
		},
	}
}

// runtimeEnv builds the evaluation environment for one stream: every wire
// field by its JSON name plus the stream-bound helpers.
func runtimeEnv(s models.Stream) map[string]any {
	env := staticEnv()

	env["id"] = s.ID
	env["user_id"] = s.UserID
	env["user_login"] = s.UserLogin
	env["user_name"] = s.UserName
	env["game_id"] = s.GameID
	env["game_name"] = s.GameName
	env["type"] = s.Type
	env["title"] = s.Title
	env["viewer_count"] = s.ViewerCount
	env["started_at"] = s.StartedAt
	env["language"] = s.Language
	env["tags"] = s.Tags
	env["tag_ids"] = s.TagIDs
	env["is_mature"] = s.IsMature
	env["is_live"] = s.IsLive()

	env["hasTag"] = func(tag string) bool {
		for _, t := range s.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	}
	env["uptimeMinutes"] = func() int {
		return int(s.Uptime(time.Now()).Minutes())
	}

	return env
}
