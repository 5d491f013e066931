package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/twitch-helix-client/internal/testutil"
	"github.com/Sternrassler/twitch-helix-client/pkg/client"
	"github.com/Sternrassler/twitch-helix-client/pkg/models"
)

func TestResolveGameNames(t *testing.T) {
	mock := testutil.NewMockHelix()
	defer mock.Close()

	mock.SetHandler("/games", func(w http.ResponseWriter, r *http.Request) {
		items := make([]string, 0)
		for _, id := range r.URL.Query()["id"] {
			switch id {
			case "1":
				items = append(items, `{"id":"1","name":"Tetris"}`)
			case "2":
				items = append(items, `{"id":"2","name":"Just Chatting"}`)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(testutil.Envelope("", items...)))
	})

	c, err := client.New("test-client-id", client.WithBaseURL(mock.URL()))
	require.NoError(t, err)

	streams := []models.Stream{
		{ID: "s1", GameID: "1"},
		{ID: "s2", GameID: "2"},
		{ID: "s3", GameID: "1"},
		{ID: "s4", GameID: "9", GameName: "Already Known"},
		{ID: "s5"},
	}

	require.NoError(t, resolveGameNames(context.Background(), c, streams))

	assert.Equal(t, "Tetris", streams[0].GameName)
	assert.Equal(t, "Just Chatting", streams[1].GameName)
	assert.Equal(t, "Tetris", streams[2].GameName)
	assert.Equal(t, "Already Known", streams[3].GameName, "existing names stay untouched")
	assert.Empty(t, streams[4].GameName)

	// IDs 1 and 2 deduplicate into a single batched lookup.
	assert.Equal(t, 1, mock.RequestCount())
}

func TestResolveGameNames_NothingToResolve(t *testing.T) {
	mock := testutil.NewMockHelix()
	defer mock.Close()

	c, err := client.New("test-client-id", client.WithBaseURL(mock.URL()))
	require.NoError(t, err)

	streams := []models.Stream{
		{ID: "s1", GameID: "1", GameName: "Tetris"},
		{ID: "s2"},
	}

	require.NoError(t, resolveGameNames(context.Background(), c, streams))
	assert.Equal(t, 0, mock.RequestCount(), "no lookup when every name is present")
}

func TestResolveGameNames_LookupFailure(t *testing.T) {
	mock := testutil.NewMockHelix()
	defer mock.Close()

	mock.SetResponse("/games", testutil.NewServerErrorResponse())

	c, err := client.New("test-client-id", client.WithBaseURL(mock.URL()))
	require.NoError(t, err)

	streams := []models.Stream{{ID: "s1", GameID: "1"}}
	err = resolveGameNames(context.Background(), c, streams)
	assert.True(t, client.IsKind(err, client.KindUnsuccessfulStatus))
}
