package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamevault/storefront/internal/domain/entity"
	"github.com/gamevault/storefront/internal/domain/repository"
)

// UserRepository stores the user aggregate as one row: scalar identity
// columns plus JSONB documents for settings, cart, wishlist and library.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, phone, avatar_url, date_of_birth,
		role, is_active, settings, cart, wishlist, library, version, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	settings, cart, wishlist, library, err := marshalCollections(u)
	if err != nil {
		return err
	}
	var dob *time.Time
	if !u.DateOfBirth.IsZero() {
		dob = &u.DateOfBirth
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, phone, avatar_url, date_of_birth, role, is_active, settings, cart, wishlist, library)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, version, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.Phone, u.AvatarURL, dob, string(u.Role), u.IsActive, settings, cart, wishlist, library)

	return row.Scan(&u.ID, &u.Version, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	u := &entity.User{}
	var (
		role                              string
		dob                               *time.Time
		settings, cart, wishlist, library []byte
	)

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s = $1
	`, userColumns, column), value)

	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Phone, &u.AvatarURL, &dob,
		&role, &u.IsActive, &settings, &cart, &wishlist, &library,
		&u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if dob != nil {
		u.DateOfBirth = *dob
	}
	parsed, err := entity.ParseRole(role)
	if err != nil {
		return nil, err
	}
	u.Role = parsed
	if err := unmarshalCollections(u, settings, cart, wishlist, library); err != nil {
		return nil, err
	}
	return u, nil
}

// Update replaces the aggregate document, compare-and-swap on version.
// A lost race surfaces as ErrVersionConflict, never as a silent overwrite.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	settings, cart, wishlist, library, err := marshalCollections(u)
	if err != nil {
		return err
	}
	var dob *time.Time
	if !u.DateOfBirth.IsZero() {
		dob = &u.DateOfBirth
	}
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, phone = $4, avatar_url = $5,
			date_of_birth = $6, role = $7, is_active = $8,
			settings = $9, cart = $10, wishlist = $11, library = $12,
			version = version + 1, updated_at = $13
		WHERE id = $14 AND version = $15
	`, u.Email, u.Password, u.Name, u.Phone, u.AvatarURL,
		dob, string(u.Role), u.IsActive,
		settings, cart, wishlist, library,
		u.UpdatedAt, u.ID, u.Version)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		// Distinguish a missing row from a stale version.
		var exists bool
		if qErr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, u.ID).Scan(&exists); qErr == nil && !exists {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}
	u.Version++
	return nil
}

func marshalCollections(u *entity.User) (settings, cart, wishlist, library []byte, err error) {
	if settings, err = json.Marshal(u.Settings); err != nil {
		return
	}
	if cart, err = json.Marshal(emptyAsList(u.Cart)); err != nil {
		return
	}
	if wishlist, err = json.Marshal(emptyAsList(u.Wishlist)); err != nil {
		return
	}
	library, err = json.Marshal(emptyAsList(u.Library))
	return
}

func unmarshalCollections(u *entity.User, settings, cart, wishlist, library []byte) error {
	if err := json.Unmarshal(settings, &u.Settings); err != nil {
		return err
	}
	if err := json.Unmarshal(cart, &u.Cart); err != nil {
		return err
	}
	if err := json.Unmarshal(wishlist, &u.Wishlist); err != nil {
		return err
	}
	return json.Unmarshal(library, &u.Library)
}

// emptyAsList keeps nil slices stored as [] rather than null.
func emptyAsList[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var _ repository.UserRepository = (*UserRepository)(nil)
