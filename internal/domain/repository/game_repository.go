package repository

import (
	"context"

	"github.com/gamevault/storefront/internal/domain/entity"
)

// GameQuery narrows catalog listings. Zero values mean "no filter".
type GameQuery struct {
	Search          string
	IncludeExplicit bool
	SortBy          string // released, popularity, rating
	Page            int
	Limit           int
}

// GameRepository persists cached catalog games. Update is a full-document
// replace guarded by the game version, same contract as the user aggregate.
type GameRepository interface {
	Create(ctx context.Context, g *entity.CatalogGame) error
	GetByRawgID(ctx context.Context, rawgID int64) (*entity.CatalogGame, error)
	Update(ctx context.Context, g *entity.CatalogGame) error
	List(ctx context.Context, q GameQuery) ([]*entity.CatalogGame, int, error)
}
