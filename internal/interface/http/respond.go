package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gamevault/storefront/internal/application"
	"github.com/gamevault/storefront/internal/domain/entity"
	repo "github.com/gamevault/storefront/internal/domain/repository"
	"github.com/gamevault/storefront/pkg/response"
)

func ok[T any](c *gin.Context, status int, data T, message string, meta interface{}) {
	resp := response.Success(c, status, data, message, meta)
	c.JSON(resp.Status, resp)
}

func fail(c *gin.Context, status int, message string, details interface{}) {
	resp := response.Error[any](c, status, message, details)
	c.JSON(resp.Status, resp)
}

// failDomain maps domain and application errors onto their fixed HTTP
// statuses. Unknown errors become a 500 without leaking internals.
func failDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrAlreadyOwned),
		errors.Is(err, entity.ErrAlreadyInCart),
		errors.Is(err, entity.ErrAlreadyInWishlist),
		errors.Is(err, entity.ErrEmptyCart),
		errors.Is(err, entity.ErrInvalidRating),
		errors.Is(err, entity.ErrMinorExplicitOptIn):
		fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, entity.ErrGameNotFound),
		errors.Is(err, application.ErrUserNotFound):
		fail(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, entity.ErrNotOwned),
		errors.Is(err, entity.ErrExplicitContentBlocked),
		errors.Is(err, application.ErrAccountDisabled):
		fail(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrEmailTaken):
		fail(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, repo.ErrVersionConflict):
		fail(c, http.StatusConflict, "concurrent update, please retry", nil)
	default:
		fail(c, http.StatusInternalServerError, "internal error", nil)
	}
}
