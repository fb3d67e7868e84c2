package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePrice(t *testing.T) {
	g := &CatalogGame{Price: GamePrice{Amount: 59.99, SalePrice: 29.99}}
	assert.Equal(t, 59.99, g.EffectivePrice())

	g.Price.OnSale = true
	assert.Equal(t, 29.99, g.EffectivePrice())
}

func TestSetRating_AppendAndAverage(t *testing.T) {
	g := &CatalogGame{RawgID: 1}
	now := time.Now()

	updated, err := g.SetRating("u1", 5, "great", now)
	require.NoError(t, err)
	assert.False(t, updated)

	updated, err = g.SetRating("u2", 4, "", now)
	require.NoError(t, err)
	assert.False(t, updated)

	assert.Equal(t, 2, g.TotalRatings)
	assert.Equal(t, 4.5, g.AverageRating)
}

func TestSetRating_UpsertDoesNotAppend(t *testing.T) {
	g := &CatalogGame{RawgID: 1}
	now := time.Now()

	_, err := g.SetRating("u1", 2, "meh", now)
	require.NoError(t, err)

	updated, err := g.SetRating("u1", 5, "grew on me", now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, updated)
	require.Len(t, g.Ratings, 1)
	assert.Equal(t, 5, g.Ratings[0].Rating)
	assert.Equal(t, "grew on me", g.Ratings[0].Comment)
	assert.Equal(t, 1, g.TotalRatings)
	assert.Equal(t, 5.0, g.AverageRating)
}

func TestSetRating_RoundsToTwoDecimals(t *testing.T) {
	g := &CatalogGame{RawgID: 1}
	now := time.Now()
	for i, r := range []int{5, 4, 4} {
		_, err := g.SetRating(string(rune('a'+i)), r, "", now)
		require.NoError(t, err)
	}
	// 13/3 = 4.333...
	assert.Equal(t, 4.33, g.AverageRating)
}

func TestSetRating_Bounds(t *testing.T) {
	g := &CatalogGame{RawgID: 1}
	now := time.Now()

	_, err := g.SetRating("u1", 0, "", now)
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = g.SetRating("u1", 6, "", now)
	assert.ErrorIs(t, err, ErrInvalidRating)
	assert.Empty(t, g.Ratings)
	assert.Equal(t, 0, g.TotalRatings)
}

func TestApplyESRB(t *testing.T) {
	cases := []struct {
		slug     string
		explicit bool
	}{
		{"everyone", false},
		{"everyone-10-plus", false},
		{"teen", false},
		{"mature", true},
		{"adults-only", true},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(tc.slug, func(t *testing.T) {
			g := &CatalogGame{}
			g.ApplyESRB(tc.slug)
			assert.Equal(t, tc.slug, g.ESRBSlug)
			assert.Equal(t, tc.explicit, g.IsExplicit)
		})
	}
}

func TestApplyESRB_NeverClearsExplicit(t *testing.T) {
	g := &CatalogGame{IsExplicit: true}
	g.ApplyESRB("teen")
	assert.True(t, g.IsExplicit)
}
