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

// GameRepository stores cached catalog games: scalar columns for the
// filterable fields, JSONB for genres, price and the embedded ratings.
type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

const gameColumns = `id, rawg_id, name, slug, description, released, background_image,
		rating, ratings_count, metacritic, genres, esrb_slug, is_explicit, is_active,
		price, ratings, average_rating, total_ratings, version, created_at, updated_at`

func (r *GameRepository) Create(ctx context.Context, g *entity.CatalogGame) error {
	genres, price, ratings, err := marshalGameDocs(g)
	if err != nil {
		return err
	}
	var released *time.Time
	if !g.Released.IsZero() {
		released = &g.Released
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO games (rawg_id, name, slug, description, released, background_image,
			rating, ratings_count, metacritic, genres, esrb_slug, is_explicit, is_active,
			price, ratings, average_rating, total_ratings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, version, created_at, updated_at
	`, g.RawgID, g.Name, g.Slug, g.Description, released, g.BackgroundImage,
		g.Rating, g.RatingsCount, g.Metacritic, genres, g.ESRBSlug, g.IsExplicit, g.IsActive,
		price, ratings, g.AverageRating, g.TotalRatings)

	return row.Scan(&g.ID, &g.Version, &g.CreatedAt, &g.UpdatedAt)
}

func (r *GameRepository) GetByRawgID(ctx context.Context, rawgID int64) (*entity.CatalogGame, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s
		FROM games
		WHERE rawg_id = $1
	`, gameColumns), rawgID)

	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

// Update replaces the game document, compare-and-swap on version.
func (r *GameRepository) Update(ctx context.Context, g *entity.CatalogGame) error {
	genres, price, ratings, err := marshalGameDocs(g)
	if err != nil {
		return err
	}
	var released *time.Time
	if !g.Released.IsZero() {
		released = &g.Released
	}
	g.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE games
		SET name = $1, slug = $2, description = $3, released = $4, background_image = $5,
			rating = $6, ratings_count = $7, metacritic = $8, genres = $9, esrb_slug = $10,
			is_explicit = $11, is_active = $12, price = $13, ratings = $14,
			average_rating = $15, total_ratings = $16,
			version = version + 1, updated_at = $17
		WHERE id = $18 AND version = $19
	`, g.Name, g.Slug, g.Description, released, g.BackgroundImage,
		g.Rating, g.RatingsCount, g.Metacritic, genres, g.ESRBSlug,
		g.IsExplicit, g.IsActive, price, ratings,
		g.AverageRating, g.TotalRatings,
		g.UpdatedAt, g.ID, g.Version)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		var exists bool
		if qErr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, g.ID).Scan(&exists); qErr == nil && !exists {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}
	g.Version++
	return nil
}

// List runs the catalog browse query: active games, explicit filtered by
// the caller's visibility, ordered per SortBy, paginated.
func (r *GameRepository) List(ctx context.Context, q repository.GameQuery) ([]*entity.CatalogGame, int, error) {
	where := "WHERE is_active = TRUE"
	args := []any{}
	if !q.IncludeExplicit {
		where += " AND is_explicit = FALSE"
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}

	order := "released DESC NULLS LAST"
	switch q.SortBy {
	case "popularity":
		order = "ratings_count DESC"
	case "rating":
		order = "average_rating DESC, total_ratings DESC"
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM games "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM games
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, gameColumns, where, order, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*entity.CatalogGame
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

func scanGame(row pgx.Row) (*entity.CatalogGame, error) {
	g := &entity.CatalogGame{}
	var (
		released               *time.Time
		genres, price, ratings []byte
	)
	if err := row.Scan(&g.ID, &g.RawgID, &g.Name, &g.Slug, &g.Description, &released, &g.BackgroundImage,
		&g.Rating, &g.RatingsCount, &g.Metacritic, &genres, &g.ESRBSlug, &g.IsExplicit, &g.IsActive,
		&price, &ratings, &g.AverageRating, &g.TotalRatings, &g.Version, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	if released != nil {
		g.Released = *released
	}
	if err := json.Unmarshal(genres, &g.Genres); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(price, &g.Price); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ratings, &g.Ratings); err != nil {
		return nil, err
	}
	return g, nil
}

func marshalGameDocs(g *entity.CatalogGame) (genres, price, ratings []byte, err error) {
	if genres, err = json.Marshal(emptyAsList(g.Genres)); err != nil {
		return
	}
	if price, err = json.Marshal(g.Price); err != nil {
		return
	}
	ratings, err = json.Marshal(emptyAsList(g.Ratings))
	return
}

var _ repository.GameRepository = (*GameRepository)(nil)
