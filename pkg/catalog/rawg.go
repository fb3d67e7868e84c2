package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is returned when the provider has no record for the id.
var ErrNotFound = errors.New("catalog: game not found")

// RAWG is a client for the RAWG games database API.
type RAWG struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewRAWG(baseURL, apiKey string, timeout time.Duration) *RAWG {
	return &RAWG{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// RAWGGame is the subset of the provider payload the catalog cache keeps.
type RAWGGame struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description"`
	DescriptionRaw  string     `json:"description_raw"`
	Released        string     `json:"released"` // 2006-01-02
	BackgroundImage string     `json:"background_image"`
	Rating          float64    `json:"rating"`
	RatingsCount    int        `json:"ratings_count"`
	Metacritic      int        `json:"metacritic"`
	Genres          []RAWGRef  `json:"genres"`
	ESRBRating      *RAWGRef   `json:"esrb_rating"`
}

type RAWGRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ReleasedTime parses the provider's date field; zero when absent.
func (g *RAWGGame) ReleasedTime() time.Time {
	if g.Released == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", g.Released)
	if err != nil {
		return time.Time{}
	}
	return t
}

// GameDetails fetches one game by provider id.
func (c *RAWG) GameDetails(ctx context.Context, gameID int64) (*RAWGGame, error) {
	u := fmt.Sprintf("%s/games/%s?key=%s", c.BaseURL, strconv.FormatInt(gameID, 10), url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rawg: unexpected status %d", res.StatusCode)
	}

	var out RAWGGame
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
