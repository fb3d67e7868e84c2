package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/gamevault/storefront/internal/domain/entity"
	"github.com/gamevault/storefront/pkg/helpers"
	"github.com/gamevault/storefront/pkg/response"
)

func sessionKey(userID string) string { return "user:session:" + userID }

// Auth validates the access token and ensures an active session exists in
// Redis whose session id matches the token. It sets userID and userRole in
// the Gin context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			resp := response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			resp := response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		if rdb != nil {
			data, rErr := rdb.HGetAll(c.Request.Context(), sessionKey(claims.UserID)).Result()
			if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
				resp := response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
				c.AbortWithStatusJSON(resp.Status, resp)
				return
			}
		}

		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Next()
	}
}

// OptionalAuth resolves the session like Auth but lets guests through with
// no context keys set. Browse routes use it so the explicit-content gate
// can see who is asking.
func OptionalAuth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			c.Next()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			c.Next()
			return
		}
		if rdb != nil {
			data, rErr := rdb.HGetAll(c.Request.Context(), sessionKey(claims.UserID)).Result()
			if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
				c.Next()
				return
			}
		}
		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Next()
	}
}

// RequireRole rejects sessions whose role is not in the allowed set. Must
// run after Auth.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := entity.Role(c.GetString("userRole"))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		resp := response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
		c.AbortWithStatusJSON(resp.Status, resp)
	}
}
