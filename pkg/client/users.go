package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Sternrassler/twitch-helix-client/pkg/models"
)

// GetUsersByLogin looks up users by login name in one request. The result
// holds at most one user per login; unknown logins are absent, not errors.
func (c *Client) GetUsersByLogin(ctx context.Context, logins []string) ([]models.User, error) {
	if len(logins) == 0 {
		return []models.User{}, nil
	}
	if len(logins) > maxIDsPerRequest {
		return nil, fmt.Errorf("at most %d logins per request (got %d)", maxIDsPerRequest, len(logins))
	}
	params := url.Values{"login": logins}
	return Query[models.User](ctx, c, http.MethodGet, "users", params)
}
