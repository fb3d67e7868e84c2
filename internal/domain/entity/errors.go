package entity

import "errors"

// Invariant errors returned by aggregate mutations. Handlers map these to
// fixed HTTP statuses; none of them leaves partial state behind.
var (
	ErrAlreadyOwned           = errors.New("game already in library")
	ErrAlreadyInCart          = errors.New("game already in cart")
	ErrAlreadyInWishlist      = errors.New("game already in wishlist")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrGameNotFound           = errors.New("game not found")
	ErrNotOwned               = errors.New("game not owned")
	ErrExplicitContentBlocked = errors.New("explicit content blocked")
	ErrInvalidRating          = errors.New("rating must be between 1 and 5")
	ErrMinorExplicitOptIn     = errors.New("must be an adult to enable explicit content")
)
