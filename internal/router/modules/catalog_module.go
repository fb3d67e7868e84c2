package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/storefront/internal/container"
	"github.com/gamevault/storefront/internal/domain/entity"
	handlers "github.com/gamevault/storefront/internal/interface/http"
	"github.com/gamevault/storefront/internal/interface/middleware"
	"github.com/gamevault/storefront/pkg/helpers"
)

// CatalogModule wires storefront browsing. Browse routes take an optional
// session so the explicit-content gate can see the viewer; rating a game
// requires a session.
type CatalogModule struct {
	Handler *handlers.CatalogHandler
	JWT     *helpers.JWTManager
}

func NewCatalogModule(h *handlers.CatalogHandler, jwt *helpers.JWTManager) *CatalogModule {
	return &CatalogModule{Handler: h, JWT: jwt}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	browseLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	browse := rg.Group("/")
	browse.Use(middleware.OptionalAuth(container.GetRedis(), m.JWT), browseLimiter)
	{
		browse.GET("/games/home", m.Handler.Homepage)
		browse.GET("/games", m.Handler.Search)
		browse.GET("/games/:gameId", m.Handler.Details)
		browse.GET("/games/:gameId/ratings", m.Handler.Ratings)
	}

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/games/:gameId/ratings", m.Handler.Rate)
	}

	admin := rg.Group("/admin")
	admin.Use(
		middleware.Auth(container.GetRedis(), m.JWT),
		middleware.RequireRole(entity.RoleAdmin, entity.RoleOwner),
	)
	{
		admin.PUT("/games/:gameId/active", m.Handler.SetActive)
	}
}
