package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/storefront/internal/container"
	handlers "github.com/gamevault/storefront/internal/interface/http"
	"github.com/gamevault/storefront/internal/interface/middleware"
	"github.com/gamevault/storefront/pkg/helpers"
)

// AccountModule wires registration, sessions, and profile routes.
// Public: POST /api/register, /api/login, /api/refresh
// Protected: POST /api/logout, GET/PUT /api/profile, PUT /api/profile/settings, POST /api/profile/avatar
type AccountModule struct {
	Handler *handlers.AccountHandler
	JWT     *helpers.JWTManager
}

func NewAccountModule(h *handlers.AccountHandler, jwt *helpers.JWTManager) *AccountModule {
	return &AccountModule{Handler: h, JWT: jwt}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.PUT("/profile/settings", m.Handler.UpdateSettings)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
	}
}
