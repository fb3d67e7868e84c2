package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/3498", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 3498,
			"name": "Grand Theft Auto V",
			"slug": "grand-theft-auto-v",
			"description_raw": "An action game.",
			"released": "2013-09-17",
			"rating": 4.47,
			"ratings_count": 6000,
			"metacritic": 92,
			"genres": [{"id": 4, "name": "Action", "slug": "action"}],
			"esrb_rating": {"id": 4, "name": "Mature", "slug": "mature"}
		}`))
	}))
	defer srv.Close()

	c := NewRAWG(srv.URL, "test-key", 5*time.Second)
	g, err := c.GameDetails(context.Background(), 3498)
	require.NoError(t, err)
	assert.Equal(t, int64(3498), g.ID)
	assert.Equal(t, "Grand Theft Auto V", g.Name)
	assert.Equal(t, 4.47, g.Rating)
	require.Len(t, g.Genres, 1)
	assert.Equal(t, "action", g.Genres[0].Slug)
	require.NotNil(t, g.ESRBRating)
	assert.Equal(t, "mature", g.ESRBRating.Slug)
	assert.Equal(t, time.Date(2013, 9, 17, 0, 0, 0, 0, time.UTC), g.ReleasedTime())
}

func TestGameDetails_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewRAWG(srv.URL, "test-key", 5*time.Second)
	_, err := c.GameDetails(context.Background(), 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGameDetails_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewRAWG(srv.URL, "test-key", 5*time.Second)
	_, err := c.GameDetails(context.Background(), 1)
	assert.Error(t, err)
}

func TestReleasedTime_Absent(t *testing.T) {
	g := &RAWGGame{}
	assert.True(t, g.ReleasedTime().IsZero())

	g.Released = "not-a-date"
	assert.True(t, g.ReleasedTime().IsZero())
}
