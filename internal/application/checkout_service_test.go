package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/storefront/internal/domain/entity"
)

func checkoutFixture(t *testing.T) (*CheckoutService, *fakeUserRepo, *fakeGameRepo) {
	t.Helper()
	users := newFakeUserRepo(&entity.User{
		ID:          "u1",
		Email:       "player@example.com",
		Name:        "Player",
		Role:        entity.RoleClient,
		IsActive:    true,
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Version:     1,
	})
	games := newFakeGameRepo(
		&entity.CatalogGame{RawgID: 1, Name: "Portal 2", IsActive: true, Price: entity.GamePrice{Amount: 19.99}},
		&entity.CatalogGame{RawgID: 2, Name: "Tomb Raider", IsActive: true, Price: entity.GamePrice{Amount: 39.99, OnSale: true, SalePrice: 9.99}},
	)
	return NewCheckoutService(users, games, nil, testLogger()), users, games
}

func TestPurchaseGame(t *testing.T) {
	svc, users, _ := checkoutFixture(t)
	ctx := context.Background()

	receipt, err := svc.PurchaseGame(ctx, "u1", 1, "credit_card")
	require.NoError(t, err)
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, int64(1), receipt.Items[0].ID)
	assert.Equal(t, 19.99, receipt.Items[0].Price)
	assert.Equal(t, 19.99, receipt.TotalPrice)
	assert.Equal(t, "credit_card", receipt.PaymentMethod)

	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.Owns(1))
}

func TestPurchaseGame_SalePrice(t *testing.T) {
	svc, users, _ := checkoutFixture(t)
	ctx := context.Background()

	receipt, err := svc.PurchaseGame(ctx, "u1", 2, "paypal")
	require.NoError(t, err)
	assert.Equal(t, 9.99, receipt.TotalPrice)

	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, u.Library, 1)
	assert.Equal(t, 9.99, u.Library[0].PurchasePrice)
}

func TestPurchaseGame_PriceFrozenAfterCatalogChange(t *testing.T) {
	svc, users, games := checkoutFixture(t)
	ctx := context.Background()

	_, err := svc.PurchaseGame(ctx, "u1", 1, "credit_card")
	require.NoError(t, err)

	// a later catalog price change must not touch the library entry
	_, err = saveGameWithRetry(ctx, games, 1, func(g *entity.CatalogGame) error {
		g.Price.Amount = 29.99
		return nil
	})
	require.NoError(t, err)

	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, u.Library, 1)
	assert.Equal(t, 19.99, u.Library[0].PurchasePrice)
}

func TestPurchaseGame_AlreadyOwned(t *testing.T) {
	svc, _, _ := checkoutFixture(t)
	ctx := context.Background()

	_, err := svc.PurchaseGame(ctx, "u1", 1, "credit_card")
	require.NoError(t, err)

	_, err = svc.PurchaseGame(ctx, "u1", 1, "credit_card")
	assert.ErrorIs(t, err, entity.ErrAlreadyOwned)
}

func TestPurchaseGame_UnknownGame(t *testing.T) {
	svc, _, _ := checkoutFixture(t)
	_, err := svc.PurchaseGame(context.Background(), "u1", 404, "credit_card")
	assert.ErrorIs(t, err, entity.ErrGameNotFound)
}

func TestPurchaseGame_UnknownUser(t *testing.T) {
	svc, _, _ := checkoutFixture(t)
	_, err := svc.PurchaseGame(context.Background(), "nobody", 1, "credit_card")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPurchaseGame_RemovesCartAndWishlistEntries(t *testing.T) {
	svc, users, _ := checkoutFixture(t)
	ctx := context.Background()

	_, err := saveUserWithRetry(ctx, users, "u1", func(u *entity.User) error {
		if err := u.AddToCart(1, "Portal 2", 19.99, time.Now()); err != nil {
			return err
		}
		return u.AddToWishlist(1, "Portal 2", time.Now())
	})
	require.NoError(t, err)

	_, err = svc.PurchaseGame(ctx, "u1", 1, "credit_card")
	require.NoError(t, err)

	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, u.InCart(1))
	assert.False(t, u.InWishlist(1))
}

func TestPurchaseGame_ConcurrentDistinctGames(t *testing.T) {
	svc, users, _ := checkoutFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int64{1, 2} {
		wg.Add(1)
		go func(slot int, gameID int64) {
			defer wg.Done()
			_, errs[slot] = svc.PurchaseGame(ctx, "u1", gameID, "credit_card")
		}(i, id)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.Owns(1))
	assert.True(t, u.Owns(2))
	assert.Len(t, u.Library, 2)
}

func TestCheckoutCart(t *testing.T) {
	svc, users, _ := checkoutFixture(t)
	ctx := context.Background()

	_, err := saveUserWithRetry(ctx, users, "u1", func(u *entity.User) error {
		if err := u.AddToCart(1, "Portal 2", 19.99, time.Now()); err != nil {
			return err
		}
		return u.AddToCart(2, "Tomb Raider", 9.99, time.Now())
	})
	require.NoError(t, err)

	receipt, err := svc.CheckoutCart(ctx, "u1", "bank_transfer")
	require.NoError(t, err)
	require.Len(t, receipt.Items, 2)
	assert.InDelta(t, 29.98, receipt.TotalPrice, 1e-9)

	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u.Cart)
	assert.Len(t, u.Library, 2)
}

func TestCheckoutCart_Empty(t *testing.T) {
	svc, _, _ := checkoutFixture(t)
	_, err := svc.CheckoutCart(context.Background(), "u1", "credit_card")
	assert.ErrorIs(t, err, entity.ErrEmptyCart)
}

func TestCheckoutCart_SkipsOwnedAndStillClears(t *testing.T) {
	svc, users, _ := checkoutFixture(t)
	ctx := context.Background()

	_, err := saveUserWithRetry(ctx, users, "u1", func(u *entity.User) error {
		if err := u.AddToCart(1, "Portal 2", 19.99, time.Now()); err != nil {
			return err
		}
		return u.AddToCart(2, "Tomb Raider", 9.99, time.Now())
	})
	require.NoError(t, err)

	// game 1 gets bought directly while still sitting in the cart
	_, err = svc.PurchaseGame(ctx, "u1", 1, "credit_card")
	require.NoError(t, err)

	// direct purchase already removed it from the cart; re-add an owned
	// entry to exercise the skip rule
	_, err = saveUserWithRetry(ctx, users, "u1", func(u *entity.User) error {
		u.Cart = append(u.Cart, entity.CartEntry{GameID: 1, GameName: "Portal 2", Price: 19.99, AddedAt: time.Now()})
		return nil
	})
	require.NoError(t, err)

	receipt, err := svc.CheckoutCart(ctx, "u1", "credit_card")
	require.NoError(t, err)
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, int64(2), receipt.Items[0].ID)
	assert.Equal(t, 9.99, receipt.TotalPrice)

	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u.Cart)
	assert.Len(t, u.Library, 2)
}

func TestHistory_NewestFirst(t *testing.T) {
	svc, users, _ := checkoutFixture(t)
	ctx := context.Background()

	now := time.Now()
	_, err := saveUserWithRetry(ctx, users, "u1", func(u *entity.User) error {
		u.Library = []entity.LibraryEntry{
			{GameID: 1, PurchaseDate: now.Add(-time.Hour)},
			{GameID: 2, PurchaseDate: now},
		}
		return nil
	})
	require.NoError(t, err)

	items, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].GameID)
	assert.Equal(t, int64(1), items[1].GameID)
}
