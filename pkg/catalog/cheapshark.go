package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// CheapShark is a client for the CheapShark price API. No API key required.
type CheapShark struct {
	BaseURL string
	client  *http.Client
}

func NewCheapShark(baseURL string, timeout time.Duration) *CheapShark {
	return &CheapShark{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// PriceQuote is the best price found for a title.
type PriceQuote struct {
	GameID      string
	Name        string
	Price       float64
	RetailPrice float64
	OnSale      bool
}

// SearchGamePrice looks up the cheapest listing for a title. A miss is not
// an error; callers fall back to the deterministic price rule.
func (c *CheapShark) SearchGamePrice(ctx context.Context, title string) (*PriceQuote, error) {
	u := fmt.Sprintf("%s/games?title=%s&limit=1", c.BaseURL, url.QueryEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cheapshark: unexpected status %d", res.StatusCode)
	}

	// The API returns numeric fields as strings.
	var listings []struct {
		GameID   string `json:"gameID"`
		External string `json:"external"`
		Cheapest string `json:"cheapest"`
		Normal   string `json:"normal"`
	}
	if err := json.NewDecoder(res.Body).Decode(&listings); err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, nil
	}

	l := listings[0]
	cheapest, err := strconv.ParseFloat(l.Cheapest, 64)
	if err != nil {
		return nil, fmt.Errorf("cheapshark: bad price %q: %w", l.Cheapest, err)
	}
	normal, err := strconv.ParseFloat(l.Normal, 64)
	if err != nil || normal <= 0 {
		normal = cheapest
	}

	return &PriceQuote{
		GameID:      l.GameID,
		Name:        l.External,
		Price:       cheapest,
		RetailPrice: normal,
		OnSale:      cheapest < normal,
	}, nil
}

// FallbackPrice assigns a deterministic price when no listing exists:
// the base decreases stepwise with game age, then scales for rating
// extremes (+20% for 4.5 and up, -30% below 3).
func FallbackPrice(rating float64, releaseYear int, now time.Time) float64 {
	yearDiff := now.Year() - releaseYear

	base := 59.99
	switch {
	case yearDiff > 5:
		base = 19.99
	case yearDiff > 3:
		base = 29.99
	case yearDiff > 1:
		base = 39.99
	}

	if rating >= 4.5 {
		base *= 1.2
	} else if rating < 3 {
		base *= 0.7
	}

	return math.Round(base*100) / 100
}
