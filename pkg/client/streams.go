package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Sternrassler/twitch-helix-client/pkg/models"
)

// StreamsPageMax is the Helix per-page maximum for the streams endpoint.
const StreamsPageMax = 100

// GetStreams returns the count most-watched live streams, ordered by
// viewer count descending.
func (c *Client) GetStreams(ctx context.Context, count int) ([]models.Stream, error) {
	return CollectPages[models.Stream](ctx, c, http.MethodGet, "streams", nil, StreamsPageMax, count)
}

// GetStreamsByGameID returns the count most-watched live streams for a
// single game category.
func (c *Client) GetStreamsByGameID(ctx context.Context, gameID string, count int) ([]models.Stream, error) {
	if gameID == "" {
		return nil, fmt.Errorf("game id is required")
	}
	base := url.Values{}
	base.Set("game_id", gameID)
	return CollectPages[models.Stream](ctx, c, http.MethodGet, "streams", base, StreamsPageMax, count)
}
