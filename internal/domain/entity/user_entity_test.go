package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func adultUser() *User {
	return &User{
		ID:          "u1",
		Email:       "player@example.com",
		Name:        "Player",
		Role:        RoleClient,
		IsActive:    true,
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func minorUser() *User {
	return &User{
		ID:          "u2",
		Role:        RoleClient,
		IsActive:    true,
		DateOfBirth: testNow.AddDate(-15, 0, 0),
	}
}

func TestAddToCart(t *testing.T) {
	u := adultUser()

	require.NoError(t, u.AddToCart(1, "Portal 2", 19.99, testNow))
	require.Len(t, u.Cart, 1)
	assert.Equal(t, "Portal 2", u.Cart[0].GameName)
	assert.Equal(t, 19.99, u.Cart[0].Price)

	assert.ErrorIs(t, u.AddToCart(1, "Portal 2", 19.99, testNow), ErrAlreadyInCart)
	assert.Len(t, u.Cart, 1)
}

func TestAddToCart_AlreadyOwned(t *testing.T) {
	u := adultUser()
	_, err := u.Purchase(1, "Portal 2", 19.99, testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, u.AddToCart(1, "Portal 2", 19.99, testNow), ErrAlreadyOwned)
	assert.Empty(t, u.Cart)
}

func TestAddToCart_WishlistDoesNotBlock(t *testing.T) {
	u := adultUser()
	require.NoError(t, u.AddToWishlist(1, "Portal 2", testNow))

	// cart and wishlist may hold the same game at once
	require.NoError(t, u.AddToCart(1, "Portal 2", 19.99, testNow))
	assert.True(t, u.InCart(1))
	assert.True(t, u.InWishlist(1))
}

func TestRemoveFromCart_Idempotent(t *testing.T) {
	u := adultUser()
	require.NoError(t, u.AddToCart(1, "Portal 2", 19.99, testNow))

	u.RemoveFromCart(1)
	assert.Empty(t, u.Cart)
	u.RemoveFromCart(1)
	assert.Empty(t, u.Cart)
	u.RemoveFromCart(99)
	assert.Empty(t, u.Cart)
}

func TestCartTotal(t *testing.T) {
	u := adultUser()
	assert.Equal(t, 0.0, u.CartTotal())

	require.NoError(t, u.AddToCart(1, "A", 19.99, testNow))
	require.NoError(t, u.AddToCart(2, "B", 39.99, testNow))
	assert.InDelta(t, 59.98, u.CartTotal(), 1e-9)
}

func TestAddToWishlist(t *testing.T) {
	u := adultUser()

	require.NoError(t, u.AddToWishlist(1, "Portal 2", testNow))
	assert.ErrorIs(t, u.AddToWishlist(1, "Portal 2", testNow), ErrAlreadyInWishlist)

	_, err := u.Purchase(2, "Tomb Raider", 19.99, testNow)
	require.NoError(t, err)
	assert.ErrorIs(t, u.AddToWishlist(2, "Tomb Raider", testNow), ErrAlreadyOwned)
}

func TestPurchase_SupersedesCartAndWishlist(t *testing.T) {
	u := adultUser()
	require.NoError(t, u.AddToCart(1, "Portal 2", 19.99, testNow))
	require.NoError(t, u.AddToWishlist(1, "Portal 2", testNow))

	item, err := u.Purchase(1, "Portal 2", 14.99, testNow)
	require.NoError(t, err)
	assert.Equal(t, 14.99, item.PurchasePrice)
	assert.True(t, u.Owns(1))
	assert.False(t, u.InCart(1))
	assert.False(t, u.InWishlist(1))
}

func TestPurchase_AlreadyOwned(t *testing.T) {
	u := adultUser()
	_, err := u.Purchase(1, "Portal 2", 19.99, testNow)
	require.NoError(t, err)

	_, err = u.Purchase(1, "Portal 2", 9.99, testNow)
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	assert.Len(t, u.Library, 1)
	assert.Equal(t, 19.99, u.Library[0].PurchasePrice)
}

func TestCheckoutCart_Empty(t *testing.T) {
	u := adultUser()
	_, _, err := u.CheckoutCart(testNow)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutCart_SkipsOwnedAndStillClears(t *testing.T) {
	u := adultUser()
	require.NoError(t, u.AddToCart(1, "A", 10, testNow))
	require.NoError(t, u.AddToCart(2, "B", 20, testNow))
	require.NoError(t, u.AddToCart(3, "C", 30, testNow))
	// game 2 becomes owned after it entered the cart
	u.Library = append(u.Library, LibraryEntry{GameID: 2, GameName: "B", PurchasePrice: 20, PurchaseDate: testNow.Add(-time.Hour)})

	purchased, total, err := u.CheckoutCart(testNow)
	require.NoError(t, err)
	require.Len(t, purchased, 2)
	assert.Equal(t, int64(1), purchased[0].GameID)
	assert.Equal(t, int64(3), purchased[1].GameID)
	assert.InDelta(t, 40.0, total, 1e-9)
	assert.Empty(t, u.Cart, "cart clears even when entries were skipped")
	assert.Len(t, u.Library, 3)
}

func TestCheckoutCart_FreezesCartPrices(t *testing.T) {
	u := adultUser()
	require.NoError(t, u.AddToCart(1, "A", 12.5, testNow))

	purchased, total, err := u.CheckoutCart(testNow)
	require.NoError(t, err)
	require.Len(t, purchased, 1)
	assert.Equal(t, 12.5, purchased[0].PurchasePrice)
	assert.Equal(t, 12.5, total)
}

func TestCheckoutCart_RemovesWishlistEntries(t *testing.T) {
	u := adultUser()
	require.NoError(t, u.AddToWishlist(1, "A", testNow))
	require.NoError(t, u.AddToCart(1, "A", 10, testNow))

	_, _, err := u.CheckoutCart(testNow)
	require.NoError(t, err)
	assert.False(t, u.InWishlist(1))
}

func TestLibraryNewestFirst(t *testing.T) {
	u := adultUser()
	u.Library = []LibraryEntry{
		{GameID: 1, PurchaseDate: testNow.Add(-2 * time.Hour)},
		{GameID: 2, PurchaseDate: testNow},
		{GameID: 3, PurchaseDate: testNow.Add(-time.Hour)},
	}

	out := u.LibraryNewestFirst()
	require.Len(t, out, 3)
	assert.Equal(t, int64(2), out[0].GameID)
	assert.Equal(t, int64(3), out[1].GameID)
	assert.Equal(t, int64(1), out[2].GameID)
	// original order untouched
	assert.Equal(t, int64(1), u.Library[0].GameID)
}

func TestAge(t *testing.T) {
	// born after Feb 29 of a leap year, so day-of-year shifts in common years
	u := &User{DateOfBirth: time.Date(2000, 7, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 24, u.Age(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 25, u.Age(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))

	adult := &User{DateOfBirth: time.Date(2008, 3, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 17, adult.Age(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 18, adult.Age(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))

	leapling := &User{DateOfBirth: time.Date(2004, 2, 29, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 20, leapling.Age(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 21, leapling.Age(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, 0, (&User{}).Age(testNow))
}

func TestCanViewExplicit(t *testing.T) {
	adultOptIn := adultUser()
	adultOptIn.Settings.ShowExplicitContent = true
	minorOptIn := minorUser()
	minorOptIn.Settings.ShowExplicitContent = true

	cases := []struct {
		name string
		user *User
		want bool
	}{
		{"guest", nil, false},
		{"adult without opt-in", adultUser(), false},
		{"adult with opt-in", adultOptIn, true},
		{"minor with opt-in", minorOptIn, false},
		{"minor without opt-in", minorUser(), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanViewExplicit(tc.user, testNow))
		})
	}
}

func TestUpdateSettings(t *testing.T) {
	u := adultUser()
	require.NoError(t, u.UpdateSettings(true, true, testNow))
	assert.True(t, u.Settings.ShowExplicitContent)
	assert.True(t, u.Settings.Newsletter)

	m := minorUser()
	assert.ErrorIs(t, m.UpdateSettings(true, false, testNow), ErrMinorExplicitOptIn)
	assert.False(t, m.Settings.ShowExplicitContent)

	// newsletter alone is fine for minors
	require.NoError(t, m.UpdateSettings(false, true, testNow))
	assert.True(t, m.Settings.Newsletter)
}
