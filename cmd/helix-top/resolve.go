package main

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/twitch-helix-client/pkg/client"
	"github.com/Sternrassler/twitch-helix-client/pkg/models"
)

// resolveConcurrency bounds the parallel game lookups. The API client
// itself pages sequentially; this fan-out happens across independent
// batched calls.
const resolveConcurrency = 4

// resolveGameNames fills in the GameName of streams that carry only a
// game ID. IDs are deduplicated and looked up in batches of
// client.GamesPageMax, concurrently.
func resolveGameNames(ctx context.Context, c *client.Client, streams []models.Stream) error {
	idSet := make(map[string]struct{})
	for _, s := range streams {
		if s.GameID != "" && s.GameName == "" {
			idSet[s.GameID] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var mu sync.Mutex
	names := make(map[string]string, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)

	for start := 0; start < len(ids); start += client.GamesPageMax {
		end := min(start+client.GamesPageMax, len(ids))
		chunk := ids[start:end]

		g.Go(func() error {
			games, err := c.GetGamesByID(ctx, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, game := range games {
				names[game.ID] = game.Name
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i := range streams {
		if streams[i].GameName == "" {
			streams[i].GameName = names[streams[i].GameID]
		}
	}

	return nil
}
