package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gamevault/storefront/internal/domain/entity"
	repo "github.com/gamevault/storefront/internal/domain/repository"
	"github.com/gamevault/storefront/pkg/helpers"
	"github.com/gamevault/storefront/pkg/mailer"
	"github.com/gamevault/storefront/pkg/mailer/templates"
)

// CheckoutService converts cart contents into library ownership. All
// precondition checks run before any mutation; the aggregate save is the
// single externalization point, so a failed save leaves nothing behind.
type CheckoutService struct {
	Users  repo.UserRepository
	Games  repo.GameRepository
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
}

func NewCheckoutService(users repo.UserRepository, games repo.GameRepository, pub *helpers.RabbitPublisher, logger *logrus.Logger) *CheckoutService {
	return &CheckoutService{Users: users, Games: games, Pub: pub, Logger: logger}
}

// PurchasedItem is one line of a receipt.
type PurchasedItem struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Receipt summarizes a completed purchase. PaymentMethod is an opaque
// label; it is never charged.
type Receipt struct {
	Items         []PurchasedItem `json:"items"`
	TotalPrice    float64         `json:"totalPrice"`
	PaymentMethod string          `json:"paymentMethod"`
	PurchaseDate  time.Time       `json:"purchaseDate"`
}

// PurchaseGame buys a single game at the catalog price effective right
// now. The price snapshot is frozen into the library entry; the game also
// leaves the cart and wishlist, ownership supersedes both.
func (s *CheckoutService) PurchaseGame(ctx context.Context, userID string, gameID int64, paymentMethod string) (*Receipt, error) {
	game, err := s.Games.GetByRawgID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, entity.ErrGameNotFound
		}
		return nil, err
	}
	price := game.EffectivePrice()

	var item entity.LibraryEntry
	u, err := saveUserWithRetry(ctx, s.Users, userID, func(u *entity.User) error {
		li, pErr := u.Purchase(game.RawgID, game.Name, price, time.Now())
		item = li
		return pErr
	})
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		Items:         []PurchasedItem{{ID: item.GameID, Name: item.GameName, Price: item.PurchasePrice}},
		TotalPrice:    item.PurchasePrice,
		PaymentMethod: paymentMethod,
		PurchaseDate:  item.PurchaseDate,
	}
	s.publishReceipt(ctx, u, receipt)
	return receipt, nil
}

// CheckoutCart buys everything in the cart at the prices stored when each
// entry was added. Entries already owned are skipped, not errored, and the
// cart clears unconditionally; the receipt covers only what was bought.
func (s *CheckoutService) CheckoutCart(ctx context.Context, userID string, paymentMethod string) (*Receipt, error) {
	var purchased []entity.LibraryEntry
	var total float64
	u, err := saveUserWithRetry(ctx, s.Users, userID, func(u *entity.User) error {
		items, sum, cErr := u.CheckoutCart(time.Now())
		purchased, total = items, sum
		return cErr
	})
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		Items:         make([]PurchasedItem, 0, len(purchased)),
		TotalPrice:    total,
		PaymentMethod: paymentMethod,
		PurchaseDate:  time.Now(),
	}
	for _, it := range purchased {
		receipt.Items = append(receipt.Items, PurchasedItem{ID: it.GameID, Name: it.GameName, Price: it.PurchasePrice})
	}
	s.publishReceipt(ctx, u, receipt)
	return receipt, nil
}

// History returns the library ordered most recent purchase first.
func (s *CheckoutService) History(ctx context.Context, userID string) ([]entity.LibraryEntry, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u.LibraryNewestFirst(), nil
}

// publishReceipt enqueues the receipt email. Best effort: a broker failure
// is logged, never surfaced to the buyer.
func (s *CheckoutService) publishReceipt(ctx context.Context, u *entity.User, r *Receipt) {
	if s.Pub == nil || len(r.Items) == 0 {
		return
	}
	items := make([]any, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, map[string]any{"Name": it.Name, "Price": it.Price})
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: templates.PurchaseReceipt,
		Data: map[string]any{
			"Name":          u.Name,
			"Items":         items,
			"TotalPrice":    r.TotalPrice,
			"PaymentMethod": r.PaymentMethod,
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("receipt email enqueue failed")
	}
}
