package entity

import (
	"math"
	"time"
)

// CatalogGame mirrors one game of the external catalog. It is keyed by the
// provider's id (RawgID), not the database primary key, and carries the
// embedded per-user ratings from which the aggregate fields are derived.
// Version is the optimistic-concurrency token for the rating path.
type CatalogGame struct {
	ID              string
	RawgID          int64
	Name            string
	Slug            string
	Description     string
	Released        time.Time
	BackgroundImage string
	Rating          float64 // provider rating, 0..5
	RatingsCount    int
	Metacritic      int
	Genres          []Genre
	ESRBSlug        string
	IsExplicit      bool
	IsActive        bool
	Price           GamePrice
	Ratings         []UserRating
	AverageRating   float64
	TotalRatings    int
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type GamePrice struct {
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	OnSale      bool      `json:"onSale"`
	SalePrice   float64   `json:"salePrice"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// UserRating is one account's rating of the game, unique per UserID.
type UserRating struct {
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EffectivePrice is the amount charged at this instant.
func (g *CatalogGame) EffectivePrice() float64 {
	if g.Price.OnSale {
		return g.Price.SalePrice
	}
	return g.Price.Amount
}

// SetRating upserts the caller's rating and recomputes the aggregate.
// Returns true when an existing rating was updated rather than appended.
func (g *CatalogGame) SetRating(userID string, rating int, comment string, now time.Time) (bool, error) {
	if rating < 1 || rating > 5 {
		return false, ErrInvalidRating
	}
	updated := false
	for i := range g.Ratings {
		if g.Ratings[i].UserID == userID {
			g.Ratings[i].Rating = rating
			g.Ratings[i].Comment = comment
			g.Ratings[i].CreatedAt = now
			updated = true
			break
		}
	}
	if !updated {
		g.Ratings = append(g.Ratings, UserRating{UserID: userID, Rating: rating, Comment: comment, CreatedAt: now})
	}
	g.recomputeRating()
	return updated, nil
}

// recomputeRating keeps AverageRating/TotalRatings derived, never stored
// independently of the ratings list.
func (g *CatalogGame) recomputeRating() {
	if len(g.Ratings) == 0 {
		g.AverageRating = 0
		g.TotalRatings = 0
		return
	}
	sum := 0
	for _, r := range g.Ratings {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(g.Ratings))
	g.AverageRating = math.Round(avg*100) / 100
	g.TotalRatings = len(g.Ratings)
}

// ESRB slugs that mark a game as explicit content.
const (
	esrbMature     = "mature"
	esrbAdultsOnly = "adults-only"
)

// ApplyESRB derives the explicit flag from the provider content rating.
func (g *CatalogGame) ApplyESRB(slug string) {
	g.ESRBSlug = slug
	if slug == esrbMature || slug == esrbAdultsOnly {
		g.IsExplicit = true
	}
}
