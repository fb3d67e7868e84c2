package application

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gamevault/storefront/internal/domain/entity"
	repo "github.com/gamevault/storefront/internal/domain/repository"
)

// In-memory repositories with the same compare-and-swap contract as the
// Postgres implementations: reads return detached copies, Update fails
// with ErrVersionConflict unless the version matches the stored one.

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Cart = append([]entity.CartEntry(nil), u.Cart...)
	c.Wishlist = append([]entity.WishlistEntry(nil), u.Wishlist...)
	c.Library = append([]entity.LibraryEntry(nil), u.Library...)
	return &c
}

func cloneGame(g *entity.CatalogGame) *entity.CatalogGame {
	c := *g
	c.Genres = append([]entity.Genre(nil), g.Genres...)
	c.Ratings = append([]entity.UserRating(nil), g.Ratings...)
	return &c
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	seq   int
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.seq++
		u.ID = "user-" + strconv.Itoa(r.seq)
	}
	u.Version = 1
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, found := r.users[id]
	if !found {
		return nil, repo.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, found := r.users[u.ID]
	if !found {
		return repo.ErrNotFound
	}
	if stored.Version != u.Version {
		return repo.ErrVersionConflict
	}
	u.Version++
	r.users[u.ID] = cloneUser(u)
	return nil
}

type fakeGameRepo struct {
	mu    sync.Mutex
	games map[int64]*entity.CatalogGame
}

func newFakeGameRepo(games ...*entity.CatalogGame) *fakeGameRepo {
	r := &fakeGameRepo{games: make(map[int64]*entity.CatalogGame)}
	for _, g := range games {
		if g.Version == 0 {
			g.Version = 1
		}
		r.games[g.RawgID] = cloneGame(g)
	}
	return r
}

func (r *fakeGameRepo) Create(_ context.Context, g *entity.CatalogGame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.Version = 1
	r.games[g.RawgID] = cloneGame(g)
	return nil
}

func (r *fakeGameRepo) GetByRawgID(_ context.Context, rawgID int64) (*entity.CatalogGame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, found := r.games[rawgID]
	if !found {
		return nil, repo.ErrNotFound
	}
	return cloneGame(g), nil
}

func (r *fakeGameRepo) Update(_ context.Context, g *entity.CatalogGame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, found := r.games[g.RawgID]
	if !found {
		return repo.ErrNotFound
	}
	if stored.Version != g.Version {
		return repo.ErrVersionConflict
	}
	g.Version++
	r.games[g.RawgID] = cloneGame(g)
	return nil
}

func (r *fakeGameRepo) List(_ context.Context, q repo.GameQuery) ([]*entity.CatalogGame, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CatalogGame
	for _, g := range r.games {
		if !g.IsActive {
			continue
		}
		if g.IsExplicit && !q.IncludeExplicit {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(g.Name), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, cloneGame(g))
	}
	return out, len(out), nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}
