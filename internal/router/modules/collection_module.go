package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/storefront/internal/container"
	handlers "github.com/gamevault/storefront/internal/interface/http"
	"github.com/gamevault/storefront/internal/interface/middleware"
	"github.com/gamevault/storefront/pkg/helpers"
)

// CollectionModule wires the cart, wishlist, and library routes. All of
// them require a session.
type CollectionModule struct {
	Handler *handlers.CollectionHandler
	JWT     *helpers.JWTManager
}

func NewCollectionModule(h *handlers.CollectionHandler, jwt *helpers.JWTManager) *CollectionModule {
	return &CollectionModule{Handler: h, JWT: jwt}
}

func (m *CollectionModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/cart", m.Handler.GetCart)
		auth.POST("/cart", m.Handler.AddToCart)
		auth.DELETE("/cart", m.Handler.ClearCart)
		auth.DELETE("/cart/:gameId", m.Handler.RemoveFromCart)

		auth.GET("/wishlist", m.Handler.GetWishlist)
		auth.POST("/wishlist", m.Handler.AddToWishlist)
		auth.DELETE("/wishlist/:gameId", m.Handler.RemoveFromWishlist)

		auth.GET("/library", m.Handler.GetLibrary)
	}
}
