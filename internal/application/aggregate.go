package application

import (
	"context"
	"errors"

	"github.com/gamevault/storefront/internal/domain/entity"
	repo "github.com/gamevault/storefront/internal/domain/repository"
)

// maxSaveRetries bounds the optimistic-concurrency retry loop. Each retry
// reloads the aggregate, so mutate re-evaluates its preconditions against
// the state that actually won the race.
const maxSaveRetries = 3

// saveUserWithRetry loads the user aggregate, applies mutate to the fresh
// copy, and saves it with a compare-and-swap on the version. The single
// Update call is the only externalization point; a mutate error aborts with
// no visible state change.
func saveUserWithRetry(ctx context.Context, users repo.UserRepository, userID string, mutate func(*entity.User) error) (*entity.User, error) {
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if err := mutate(u); err != nil {
			return nil, err
		}
		err = users.Update(ctx, u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repo.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// saveGameWithRetry is the same compare-and-swap loop for the catalog game
// document, keyed by the external id.
func saveGameWithRetry(ctx context.Context, games repo.GameRepository, rawgID int64, mutate func(*entity.CatalogGame) error) (*entity.CatalogGame, error) {
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		g, err := games.GetByRawgID(ctx, rawgID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, entity.ErrGameNotFound
			}
			return nil, err
		}
		if err := mutate(g); err != nil {
			return nil, err
		}
		err = games.Update(ctx, g)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, repo.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
