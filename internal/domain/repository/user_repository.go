package repository

import (
	"context"
	"errors"

	"github.com/gamevault/storefront/internal/domain/entity"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when a save loses the compare-and-swap
	// on the aggregate version; callers reload and retry.
	ErrVersionConflict = errors.New("version conflict")
)

// UserRepository persists the user aggregate. Update replaces the whole
// document in one write, guarded by the aggregate version.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
