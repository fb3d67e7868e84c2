package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/storefront/internal/domain/entity"
)

func collectionFixture(t *testing.T) (*CollectionService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo(&entity.User{
		ID:          "u1",
		Email:       "player@example.com",
		Role:        entity.RoleClient,
		IsActive:    true,
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Version:     1,
	})
	return NewCollectionService(users, testLogger()), users
}

func TestCollectionCart(t *testing.T) {
	svc, _ := collectionFixture(t)
	ctx := context.Background()

	view, err := svc.AddToCart(ctx, "u1", 1, "Portal 2", 19.99)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 19.99, view.TotalPrice)

	_, err = svc.AddToCart(ctx, "u1", 1, "Portal 2", 19.99)
	assert.ErrorIs(t, err, entity.ErrAlreadyInCart)

	view, err = svc.AddToCart(ctx, "u1", 2, "Tomb Raider", 9.99)
	require.NoError(t, err)
	assert.InDelta(t, 29.98, view.TotalPrice, 1e-9)

	view, err = svc.RemoveFromCart(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2), view.Items[0].GameID)

	// removing a game that is not carted is a no-op
	view, err = svc.RemoveFromCart(ctx, "u1", 99)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)

	require.NoError(t, svc.ClearCart(ctx, "u1"))
	view, err = svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0.0, view.TotalPrice)
}

func TestCollectionWishlist(t *testing.T) {
	svc, _ := collectionFixture(t)
	ctx := context.Background()

	items, err := svc.AddToWishlist(ctx, "u1", 1, "Portal 2")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.AddToWishlist(ctx, "u1", 1, "Portal 2")
	assert.ErrorIs(t, err, entity.ErrAlreadyInWishlist)

	items, err = svc.RemoveFromWishlist(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = svc.RemoveFromWishlist(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCollectionWishlist_OwnedGameRejected(t *testing.T) {
	svc, users := collectionFixture(t)
	ctx := context.Background()

	_, err := saveUserWithRetry(ctx, users, "u1", func(u *entity.User) error {
		_, pErr := u.Purchase(1, "Portal 2", 19.99, time.Now())
		return pErr
	})
	require.NoError(t, err)

	_, err = svc.AddToWishlist(ctx, "u1", 1, "Portal 2")
	assert.ErrorIs(t, err, entity.ErrAlreadyOwned)
}

func TestCollection_UnknownUser(t *testing.T) {
	svc, _ := collectionFixture(t)
	ctx := context.Background()

	_, err := svc.GetCart(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.AddToCart(ctx, "nobody", 1, "Portal 2", 19.99)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.GetLibrary(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetLibrary_NewestFirst(t *testing.T) {
	svc, users := collectionFixture(t)
	ctx := context.Background()

	now := time.Now()
	_, err := saveUserWithRetry(ctx, users, "u1", func(u *entity.User) error {
		u.Library = []entity.LibraryEntry{
			{GameID: 1, PurchaseDate: now.Add(-2 * time.Hour)},
			{GameID: 2, PurchaseDate: now},
		}
		return nil
	})
	require.NoError(t, err)

	items, err := svc.GetLibrary(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].GameID)
}
