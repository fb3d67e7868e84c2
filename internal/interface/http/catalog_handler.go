package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/storefront/internal/application"
	"github.com/gamevault/storefront/internal/domain/entity"
	"github.com/gamevault/storefront/pkg/validation"
)

// CatalogHandler serves the storefront browse surface. Browse routes are
// reachable without a session; when a session exists the viewer's account
// decides whether explicit titles are visible.
type CatalogHandler struct {
	Svc      *application.CatalogService
	Accounts *application.AccountService
	Logger   *logrus.Logger
}

func NewCatalogHandler(svc *application.CatalogService, accounts *application.AccountService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Accounts: accounts, Logger: logger}
}

type rateGameRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

type setActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// viewer resolves the authenticated user, or nil for guests.
func (h *CatalogHandler) viewer(c *gin.Context) *entity.User {
	uid := c.GetString("userID")
	if uid == "" {
		return nil
	}
	u, err := h.Accounts.GetProfile(c.Request.Context(), uid)
	if err != nil {
		return nil
	}
	return u
}

func gameSummary(g *entity.CatalogGame) gin.H {
	released := ""
	if !g.Released.IsZero() {
		released = g.Released.Format(dateLayout)
	}
	return gin.H{
		"id":              g.RawgID,
		"name":            g.Name,
		"slug":            g.Slug,
		"released":        released,
		"backgroundImage": g.BackgroundImage,
		"rating":          g.Rating,
		"genres":          g.Genres,
		"isExplicit":      g.IsExplicit,
		"price":           g.Price,
		"averageRating":   g.AverageRating,
		"totalRatings":    g.TotalRatings,
	}
}

func gameSummaries(games []*entity.CatalogGame) []gin.H {
	out := make([]gin.H, 0, len(games))
	for _, g := range games {
		out = append(out, gameSummary(g))
	}
	return out
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}

// Homepage GET /api/games/home
func (h *CatalogHandler) Homepage(c *gin.Context) {
	view, err := h.Svc.Homepage(c.Request.Context(), h.viewer(c))
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"recent":   gameSummaries(view.Recent),
		"popular":  gameSummaries(view.Popular),
		"topRated": gameSummaries(view.TopRated),
	}, "homepage", nil)
}

// Search GET /api/games?q=&sort=&page=&limit=
func (h *CatalogHandler) Search(c *gin.Context) {
	page, limit := pageParams(c)
	res, err := h.Svc.Search(c.Request.Context(), h.viewer(c), c.Query("q"), c.Query("sort"), page, limit)
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"games": gameSummaries(res.Games)}, "games", gin.H{
		"total": res.Total,
		"page":  res.Page,
		"pages": res.Pages,
	})
}

// Details GET /api/games/:gameId
func (h *CatalogHandler) Details(c *gin.Context) {
	id, valid := gameIDParam(c)
	if !valid {
		return
	}
	view, err := h.Svc.GameDetails(c.Request.Context(), id, h.viewer(c))
	if err != nil {
		failDomain(c, err)
		return
	}
	g := view.Game
	detail := gameSummary(g)
	detail["description"] = g.Description
	detail["metacritic"] = g.Metacritic
	detail["ratingsCount"] = g.RatingsCount
	detail["userOwnsGame"] = view.UserOwnsGame
	ok(c, http.StatusOK, detail, "game details", nil)
}

// Ratings GET /api/games/:gameId/ratings
func (h *CatalogHandler) Ratings(c *gin.Context) {
	id, valid := gameIDParam(c)
	if !valid {
		return
	}
	page, limit := pageParams(c)
	ratings, avg, total, err := h.Svc.GameRatings(c.Request.Context(), id, page, limit)
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"ratings":       ratings,
		"averageRating": avg,
		"totalRatings":  total,
	}, "game ratings", gin.H{"page": page})
}

// Rate POST /api/games/:gameId/ratings
// A second rating from the same user replaces the first.
func (h *CatalogHandler) Rate(c *gin.Context) {
	id, valid := gameIDParam(c)
	if !valid {
		return
	}
	var req rateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	summary, err := h.Svc.RecordRating(c.Request.Context(), c.GetString("userID"), id, req.Rating, req.Comment)
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"averageRating": summary.AverageRating,
		"totalRatings":  summary.TotalRatings,
		"updated":       summary.Updated,
	}, "rating recorded", nil)
}

// SetActive PUT /api/admin/games/:gameId/active (admin/owner only)
func (h *CatalogHandler) SetActive(c *gin.Context) {
	id, valid := gameIDParam(c)
	if !valid {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	g, err := h.Svc.SetGameActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"id": g.RawgID, "isActive": g.IsActive}, "listing updated", nil)
}
