package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/storefront/internal/domain/entity"
	repo "github.com/gamevault/storefront/internal/domain/repository"
	"github.com/gamevault/storefront/pkg/catalog"
	"github.com/gamevault/storefront/pkg/helpers"
)

// CatalogService owns the catalog cache: Redis hot layer over the games
// table, lazily filled from RAWG (metadata) and CheapShark (price) on the
// first request for an unknown game. It also carries the rating path,
// which shares the single-document CAS shape with the user aggregate.
type CatalogService struct {
	Games    repo.GameRepository
	Users    repo.UserRepository
	RAWG     *catalog.RAWG
	Prices   *catalog.CheapShark
	Redis    *redis.Client
	CacheTTL time.Duration
	ES       *elasticsearch.Client
	ESIndex  string
	Logger   *logrus.Logger
}

func NewCatalogService(games repo.GameRepository, users repo.UserRepository, rawg *catalog.RAWG, prices *catalog.CheapShark, rdb *redis.Client, cacheTTL time.Duration, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		Games:    games,
		Users:    users,
		RAWG:     rawg,
		Prices:   prices,
		Redis:    rdb,
		CacheTTL: cacheTTL,
		ES:       es,
		ESIndex:  esIndex,
		Logger:   logger,
	}
}

func gameCacheKey(rawgID int64) string {
	return "game:rawg:" + strconv.FormatInt(rawgID, 10)
}

// GetByExternalID resolves a game from the hot cache or the database.
// It does not reach out to the provider; see FetchAndCache.
func (s *CatalogService) GetByExternalID(ctx context.Context, rawgID int64) (*entity.CatalogGame, error) {
	if s.Redis != nil {
		var cached entity.CatalogGame
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, gameCacheKey(rawgID), &cached); err == nil && ok {
			return &cached, nil
		}
	}
	g, err := s.Games.GetByRawgID(ctx, rawgID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, entity.ErrGameNotFound
		}
		return nil, err
	}
	s.cacheGame(ctx, g)
	return g, nil
}

// FetchAndCache pulls the game from RAWG, resolves a price via CheapShark
// or the deterministic fallback rule, stores it, and indexes it for
// search. Provider failures surface as GameNotFound; there is no retry.
func (s *CatalogService) FetchAndCache(ctx context.Context, rawgID int64) (*entity.CatalogGame, error) {
	raw, err := s.RAWG.GameDetails(ctx, rawgID)
	if err != nil {
		if s.Logger != nil && !errors.Is(err, catalog.ErrNotFound) {
			s.Logger.WithError(err).WithField("rawg_id", rawgID).Warn("catalog provider fetch failed")
		}
		return nil, entity.ErrGameNotFound
	}

	g := &entity.CatalogGame{
		RawgID:          raw.ID,
		Name:            raw.Name,
		Slug:            raw.Slug,
		Description:     raw.DescriptionRaw,
		Released:        raw.ReleasedTime(),
		BackgroundImage: raw.BackgroundImage,
		Rating:          raw.Rating,
		RatingsCount:    raw.RatingsCount,
		Metacritic:      raw.Metacritic,
		IsActive:        true,
	}
	if g.Description == "" {
		g.Description = raw.Description
	}
	for _, genre := range raw.Genres {
		g.Genres = append(g.Genres, entity.Genre{ID: genre.ID, Name: genre.Name, Slug: genre.Slug})
	}
	if raw.ESRBRating != nil {
		g.ApplyESRB(raw.ESRBRating.Slug)
	}

	now := time.Now()
	quote, qErr := s.Prices.SearchGamePrice(ctx, raw.Name)
	if qErr != nil && s.Logger != nil {
		s.Logger.WithError(qErr).WithField("name", raw.Name).Warn("price lookup failed")
	}
	if quote != nil {
		g.Price = entity.GamePrice{
			Amount:      quote.RetailPrice,
			Currency:    "USD",
			OnSale:      quote.OnSale,
			SalePrice:   quote.Price,
			LastUpdated: now,
		}
	} else {
		releaseYear := now.Year()
		if !g.Released.IsZero() {
			releaseYear = g.Released.Year()
		}
		rating := g.Rating
		if rating == 0 {
			rating = 3
		}
		g.Price = entity.GamePrice{
			Amount:      catalog.FallbackPrice(rating, releaseYear, now),
			Currency:    "USD",
			LastUpdated: now,
		}
	}

	if err := s.Games.Create(ctx, g); err != nil {
		return nil, err
	}
	s.cacheGame(ctx, g)
	s.indexGame(ctx, g)
	return g, nil
}

// GameDetails resolves a game for the detail page, enriching on a cache
// miss. A real but explicit game behind the gate returns
// ExplicitContentBlocked, distinguishing "hidden" from "doesn't exist".
type GameDetailsView struct {
	Game         *entity.CatalogGame
	UserOwnsGame bool
}

func (s *CatalogService) GameDetails(ctx context.Context, rawgID int64, viewer *entity.User) (*GameDetailsView, error) {
	g, err := s.GetByExternalID(ctx, rawgID)
	if errors.Is(err, entity.ErrGameNotFound) {
		g, err = s.FetchAndCache(ctx, rawgID)
	}
	if err != nil {
		return nil, err
	}
	if !g.IsActive {
		return nil, entity.ErrGameNotFound
	}
	if g.IsExplicit && !entity.CanViewExplicit(viewer, time.Now()) {
		return nil, entity.ErrExplicitContentBlocked
	}
	owns := viewer != nil && viewer.Owns(g.RawgID)
	return &GameDetailsView{Game: g, UserOwnsGame: owns}, nil
}

// HomepageView groups the three storefront shelves.
type HomepageView struct {
	Recent   []*entity.CatalogGame
	Popular  []*entity.CatalogGame
	TopRated []*entity.CatalogGame
}

func (s *CatalogService) Homepage(ctx context.Context, viewer *entity.User) (*HomepageView, error) {
	explicit := entity.CanViewExplicit(viewer, time.Now())
	view := &HomepageView{}
	for _, shelf := range []struct {
		sortBy string
		dest   *[]*entity.CatalogGame
	}{
		{"released", &view.Recent},
		{"popularity", &view.Popular},
		{"rating", &view.TopRated},
	} {
		games, _, err := s.Games.List(ctx, repo.GameQuery{IncludeExplicit: explicit, SortBy: shelf.sortBy, Limit: 10})
		if err != nil {
			return nil, err
		}
		*shelf.dest = games
	}
	return view, nil
}

// SearchResult is a catalog page plus pagination totals.
type SearchResult struct {
	Games []*entity.CatalogGame
	Total int
	Page  int
	Pages int
}

// Search queries Elasticsearch when available and falls back to the
// database otherwise. Explicit items are filtered by the viewer's gate in
// both paths.
func (s *CatalogService) Search(ctx context.Context, viewer *entity.User, query, sortBy string, page, limit int) (*SearchResult, error) {
	explicit := entity.CanViewExplicit(viewer, time.Now())
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}

	if s.ES != nil && s.ESIndex != "" && query != "" {
		if res, err := s.searchES(ctx, query, explicit, page, limit); err == nil {
			return res, nil
		} else if s.Logger != nil {
			s.Logger.WithError(err).Warn("es search failed, falling back to sql")
		}
	}

	games, total, err := s.Games.List(ctx, repo.GameQuery{
		Search:          query,
		IncludeExplicit: explicit,
		SortBy:          sortBy,
		Page:            page,
		Limit:           limit,
	})
	if err != nil {
		return nil, err
	}
	return &SearchResult{Games: games, Total: total, Page: page, Pages: pages(total, limit)}, nil
}

func (s *CatalogService) searchES(ctx context.Context, query string, includeExplicit bool, page, limit int) (*SearchResult, error) {
	must := []map[string]any{{
		"multi_match": map[string]any{
			"query":  query,
			"fields": []string{"name^2", "slug", "description"},
		},
	}}
	var filter []map[string]any
	if !includeExplicit {
		filter = append(filter, map[string]any{"term": map[string]any{"is_explicit": false}})
	}
	body := map[string]any{
		"query": map[string]any{"bool": map[string]any{"must": must, "filter": filter}},
		"from":  (page - 1) * limit,
		"size":  limit,
	}
	b, _ := json.Marshal(body)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.New("es search: " + res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					RawgID int64 `json:"rawg_id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := &SearchResult{Total: parsed.Hits.Total.Value, Page: page, Pages: pages(parsed.Hits.Total.Value, limit)}
	for _, h := range parsed.Hits.Hits {
		g, gErr := s.GetByExternalID(ctx, h.Source.RawgID)
		if gErr != nil {
			continue
		}
		out.Games = append(out.Games, g)
	}
	return out, nil
}

// RatingSummary is what the rating endpoint returns after an upsert.
type RatingSummary struct {
	AverageRating float64
	TotalRatings  int
	Updated       bool
}

// RecordRating upserts the caller's rating on an owned game and recomputes
// the aggregate under the game-document CAS.
func (s *CatalogService) RecordRating(ctx context.Context, userID string, rawgID int64, rating int, comment string) (*RatingSummary, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !u.Owns(rawgID) {
		return nil, entity.ErrNotOwned
	}

	var updated bool
	g, err := saveGameWithRetry(ctx, s.Games, rawgID, func(g *entity.CatalogGame) error {
		var sErr error
		updated, sErr = g.SetRating(userID, rating, comment, time.Now())
		return sErr
	})
	if err != nil {
		return nil, err
	}
	s.cacheGame(ctx, g)
	return &RatingSummary{AverageRating: g.AverageRating, TotalRatings: g.TotalRatings, Updated: updated}, nil
}

// GameRatings pages through a game's embedded ratings.
func (s *CatalogService) GameRatings(ctx context.Context, rawgID int64, page, limit int) ([]entity.UserRating, float64, int, error) {
	g, err := s.GetByExternalID(ctx, rawgID)
	if err != nil {
		return nil, 0, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start > len(g.Ratings) {
		start = len(g.Ratings)
	}
	end := start + limit
	if end > len(g.Ratings) {
		end = len(g.Ratings)
	}
	return g.Ratings[start:end], g.AverageRating, g.TotalRatings, nil
}

// SetGameActive lists or delists a catalog entry. Delisted games stay in
// libraries; they just stop resolving on the browse surface.
func (s *CatalogService) SetGameActive(ctx context.Context, rawgID int64, active bool) (*entity.CatalogGame, error) {
	g, err := saveGameWithRetry(ctx, s.Games, rawgID, func(g *entity.CatalogGame) error {
		g.IsActive = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cacheGame(ctx, g)
	return g, nil
}

func (s *CatalogService) cacheGame(ctx context.Context, g *entity.CatalogGame) {
	if s.Redis == nil {
		return
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, gameCacheKey(g.RawgID), g, ttl); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("rawg_id", g.RawgID).Warn("game cache write failed")
	}
}

// indexGame mirrors the searchable fields into Elasticsearch.
func (s *CatalogService) indexGame(ctx context.Context, g *entity.CatalogGame) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"rawg_id":        g.RawgID,
		"name":           g.Name,
		"slug":           g.Slug,
		"description":    g.Description,
		"is_explicit":    g.IsExplicit,
		"average_rating": g.AverageRating,
	}
	if !g.Released.IsZero() {
		doc["released"] = g.Released.Format(time.RFC3339)
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESIndex,
		DocumentID: strconv.FormatInt(g.RawgID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("rawg_id", g.RawgID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("rawg_id", g.RawgID).Warn("es index response error")
	}
}

func pages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	p := total / limit
	if total%limit != 0 {
		p++
	}
	return p
}
