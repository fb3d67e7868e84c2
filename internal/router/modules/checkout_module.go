package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/storefront/internal/container"
	handlers "github.com/gamevault/storefront/internal/interface/http"
	"github.com/gamevault/storefront/internal/interface/middleware"
	"github.com/gamevault/storefront/pkg/helpers"
)

// CheckoutModule wires the purchase routes. Purchases get a tighter
// per-user limit than ordinary collection traffic.
type CheckoutModule struct {
	Handler *handlers.CheckoutHandler
	JWT     *helpers.JWTManager
}

func NewCheckoutModule(h *handlers.CheckoutHandler, jwt *helpers.JWTManager) *CheckoutModule {
	return &CheckoutModule{Handler: h, JWT: jwt}
}

func (m *CheckoutModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/purchase", m.Handler.Purchase)
		auth.POST("/cart/checkout", m.Handler.Checkout)
		auth.GET("/purchases", m.Handler.History)
	}
}
