package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Sternrassler/twitch-helix-client/pkg/models"
)

// GamesPageMax is the Helix per-page maximum for the games endpoints.
const GamesPageMax = 100

// GetTopGames returns the count most-watched game categories.
func (c *Client) GetTopGames(ctx context.Context, count int) ([]models.Game, error) {
	return CollectPages[models.Game](ctx, c, http.MethodGet, "games/top", nil, GamesPageMax, count)
}

// GetGamesByID looks up game categories by ID in one request. The result
// holds at most one game per ID; unknown IDs are absent, not errors.
func (c *Client) GetGamesByID(ctx context.Context, ids []string) ([]models.Game, error) {
	if len(ids) == 0 {
		return []models.Game{}, nil
	}
	if len(ids) > maxIDsPerRequest {
		return nil, fmt.Errorf("at most %d ids per request (got %d)", maxIDsPerRequest, len(ids))
	}
	params := url.Values{"id": ids}
	return Query[models.Game](ctx, c, http.MethodGet, "games", params)
}
