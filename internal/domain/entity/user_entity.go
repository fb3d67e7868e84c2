package entity

import (
	"sort"
	"time"
)

// User is the aggregate root for the account domain. The cart, wishlist and
// library live inside the aggregate and are persisted as one document write;
// Version is the optimistic-concurrency token checked on every save.
//
// Passwords are stored as bcrypt hashes in Password field.
type User struct {
	ID          string
	Email       string
	Password    string
	Name        string
	Phone       string
	AvatarURL   string
	DateOfBirth time.Time
	Role        Role
	IsActive    bool
	Settings    Settings
	Cart        []CartEntry
	Wishlist    []WishlistEntry
	Library     []LibraryEntry
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Settings are the per-account content preferences.
type Settings struct {
	ShowExplicitContent bool `json:"showExplicitContent"`
	Newsletter          bool `json:"newsletter"`
}

// CartEntry is transient: it exists between add-to-cart and removal,
// clear, or checkout. Price is the catalog price at the time of the add.
type CartEntry struct {
	GameID   int64     `json:"gameId"`
	GameName string    `json:"gameName"`
	Price    float64   `json:"price"`
	AddedAt  time.Time `json:"addedAt"`
}

type WishlistEntry struct {
	GameID   int64     `json:"gameId"`
	GameName string    `json:"gameName"`
	AddedAt  time.Time `json:"addedAt"`
}

// LibraryEntry records permanent ownership. PurchasePrice is frozen at
// purchase time and never recomputed from the catalog.
type LibraryEntry struct {
	GameID        int64     `json:"gameId"`
	GameName      string    `json:"gameName"`
	PurchasePrice float64   `json:"purchasePrice"`
	PurchaseDate  time.Time `json:"purchaseDate"`
	HoursPlayed   float64   `json:"hoursPlayed"`
}

const adultAge = 18

// Age returns full years since DateOfBirth at the given instant.
func (u *User) Age(now time.Time) int {
	if u.DateOfBirth.IsZero() {
		return 0
	}
	years := now.Year() - u.DateOfBirth.Year()
	anniversary := time.Date(now.Year(), u.DateOfBirth.Month(), u.DateOfBirth.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(anniversary) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func (u *User) IsAdult(now time.Time) bool {
	return u.Age(now) >= adultAge
}

// CanViewExplicit is the visibility gate: guests never see explicit
// content, authenticated users only when adult and opted in.
func CanViewExplicit(u *User, now time.Time) bool {
	if u == nil {
		return false
	}
	return u.IsAdult(now) && u.Settings.ShowExplicitContent
}

func (u *User) Owns(gameID int64) bool {
	for _, it := range u.Library {
		if it.GameID == gameID {
			return true
		}
	}
	return false
}

func (u *User) InCart(gameID int64) bool {
	for _, it := range u.Cart {
		if it.GameID == gameID {
			return true
		}
	}
	return false
}

func (u *User) InWishlist(gameID int64) bool {
	for _, it := range u.Wishlist {
		if it.GameID == gameID {
			return true
		}
	}
	return false
}

// AddToCart appends a cart entry. A game already owned or already carted is
// rejected; wishlist membership is deliberately not checked, cart and
// wishlist may reference the same game at once.
func (u *User) AddToCart(gameID int64, gameName string, price float64, now time.Time) error {
	if u.Owns(gameID) {
		return ErrAlreadyOwned
	}
	if u.InCart(gameID) {
		return ErrAlreadyInCart
	}
	u.Cart = append(u.Cart, CartEntry{GameID: gameID, GameName: gameName, Price: price, AddedAt: now})
	return nil
}

// RemoveFromCart is idempotent: removing an absent entry is a no-op.
func (u *User) RemoveFromCart(gameID int64) {
	out := u.Cart[:0]
	for _, it := range u.Cart {
		if it.GameID != gameID {
			out = append(out, it)
		}
	}
	u.Cart = out
}

func (u *User) ClearCart() {
	u.Cart = nil
}

// CartTotal sums current cart prices.
func (u *User) CartTotal() float64 {
	var total float64
	for _, it := range u.Cart {
		total += it.Price
	}
	return total
}

func (u *User) AddToWishlist(gameID int64, gameName string, now time.Time) error {
	if u.InWishlist(gameID) {
		return ErrAlreadyInWishlist
	}
	if u.Owns(gameID) {
		return ErrAlreadyOwned
	}
	u.Wishlist = append(u.Wishlist, WishlistEntry{GameID: gameID, GameName: gameName, AddedAt: now})
	return nil
}

// RemoveFromWishlist is idempotent, mirroring RemoveFromCart.
func (u *User) RemoveFromWishlist(gameID int64) {
	out := u.Wishlist[:0]
	for _, it := range u.Wishlist {
		if it.GameID != gameID {
			out = append(out, it)
		}
	}
	u.Wishlist = out
}

// Purchase adds a single game to the library at the given price and strips
// it from the cart and wishlist; ownership always supersedes both.
func (u *User) Purchase(gameID int64, gameName string, price float64, now time.Time) (LibraryEntry, error) {
	if u.Owns(gameID) {
		return LibraryEntry{}, ErrAlreadyOwned
	}
	item := LibraryEntry{
		GameID:        gameID,
		GameName:      gameName,
		PurchasePrice: price,
		PurchaseDate:  now,
		HoursPlayed:   0,
	}
	u.Library = append(u.Library, item)
	u.RemoveFromCart(gameID)
	u.RemoveFromWishlist(gameID)
	return item, nil
}

// CheckoutCart converts the cart into library entries in insertion order.
// Entries already owned are skipped without error but still discarded when
// the cart clears; the returned total covers only what was actually bought.
func (u *User) CheckoutCart(now time.Time) ([]LibraryEntry, float64, error) {
	if len(u.Cart) == 0 {
		return nil, 0, ErrEmptyCart
	}
	var purchased []LibraryEntry
	var total float64
	for _, it := range u.Cart {
		if u.Owns(it.GameID) {
			continue
		}
		item := LibraryEntry{
			GameID:        it.GameID,
			GameName:      it.GameName,
			PurchasePrice: it.Price,
			PurchaseDate:  now,
			HoursPlayed:   0,
		}
		u.Library = append(u.Library, item)
		purchased = append(purchased, item)
		total += it.Price
		u.RemoveFromWishlist(it.GameID)
	}
	u.ClearCart()
	return purchased, total, nil
}

// LibraryNewestFirst returns a copy of the library ordered by purchase
// date descending, matching the purchase-history view.
func (u *User) LibraryNewestFirst() []LibraryEntry {
	out := make([]LibraryEntry, len(u.Library))
	copy(out, u.Library)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PurchaseDate.After(out[j].PurchaseDate)
	})
	return out
}

// UpdateSettings applies content preferences; enabling explicit content
// requires an adult account.
func (u *User) UpdateSettings(showExplicit, newsletter bool, now time.Time) error {
	if showExplicit && !u.IsAdult(now) {
		return ErrMinorExplicitOptIn
	}
	u.Settings.ShowExplicitContent = showExplicit
	u.Settings.Newsletter = newsletter
	return nil
}
