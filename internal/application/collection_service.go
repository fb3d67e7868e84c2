package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gamevault/storefront/internal/domain/entity"
	repo "github.com/gamevault/storefront/internal/domain/repository"
)

// CollectionService mutates the cart and wishlist inside the user
// aggregate. Every mutating call results in exactly one persisted write of
// the whole aggregate; concurrent writers are resolved by the version CAS.
type CollectionService struct {
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewCollectionService(users repo.UserRepository, logger *logrus.Logger) *CollectionService {
	return &CollectionService{Users: users, Logger: logger}
}

// CartView is the cart with its running total, as the cart endpoints
// return it.
type CartView struct {
	Items      []entity.CartEntry
	TotalPrice float64
}

func (s *CollectionService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return &CartView{Items: u.Cart, TotalPrice: u.CartTotal()}, nil
}

func (s *CollectionService) AddToCart(ctx context.Context, userID string, gameID int64, gameName string, price float64) (*CartView, error) {
	u, err := saveUserWithRetry(ctx, s.Users, userID, func(u *entity.User) error {
		return u.AddToCart(gameID, gameName, price, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return &CartView{Items: u.Cart, TotalPrice: u.CartTotal()}, nil
}

func (s *CollectionService) RemoveFromCart(ctx context.Context, userID string, gameID int64) (*CartView, error) {
	u, err := saveUserWithRetry(ctx, s.Users, userID, func(u *entity.User) error {
		u.RemoveFromCart(gameID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CartView{Items: u.Cart, TotalPrice: u.CartTotal()}, nil
}

func (s *CollectionService) ClearCart(ctx context.Context, userID string) error {
	_, err := saveUserWithRetry(ctx, s.Users, userID, func(u *entity.User) error {
		u.ClearCart()
		return nil
	})
	return err
}

func (s *CollectionService) GetWishlist(ctx context.Context, userID string) ([]entity.WishlistEntry, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u.Wishlist, nil
}

func (s *CollectionService) AddToWishlist(ctx context.Context, userID string, gameID int64, gameName string) ([]entity.WishlistEntry, error) {
	u, err := saveUserWithRetry(ctx, s.Users, userID, func(u *entity.User) error {
		return u.AddToWishlist(gameID, gameName, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return u.Wishlist, nil
}

func (s *CollectionService) RemoveFromWishlist(ctx context.Context, userID string, gameID int64) ([]entity.WishlistEntry, error) {
	u, err := saveUserWithRetry(ctx, s.Users, userID, func(u *entity.User) error {
		u.RemoveFromWishlist(gameID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.Wishlist, nil
}

// GetLibrary returns the library ordered most recent purchase first.
func (s *CollectionService) GetLibrary(ctx context.Context, userID string) ([]entity.LibraryEntry, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u.LibraryNewestFirst(), nil
}
