package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/storefront/internal/application"
	"github.com/gamevault/storefront/pkg/validation"
)

// CollectionHandler exposes the cart, wishlist, and library endpoints.
// Cart additions resolve the catalog price server-side so clients cannot
// set their own.
type CollectionHandler struct {
	Svc     *application.CollectionService
	Catalog *application.CatalogService
	Logger  *logrus.Logger
}

func NewCollectionHandler(svc *application.CollectionService, catalog *application.CatalogService, logger *logrus.Logger) *CollectionHandler {
	return &CollectionHandler{Svc: svc, Catalog: catalog, Logger: logger}
}

type addGameRequest struct {
	GameID int64 `json:"gameId" binding:"required,gt=0"`
}

func gameIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("gameId"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "invalid game id", nil)
		return 0, false
	}
	return id, true
}

func cartView(v *application.CartView) gin.H {
	return gin.H{"items": v.Items, "totalPrice": v.TotalPrice}
}

// GetCart GET /api/cart
func (h *CollectionHandler) GetCart(c *gin.Context) {
	v, err := h.Svc.GetCart(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, cartView(v), "cart", nil)
}

// AddToCart POST /api/cart
func (h *CollectionHandler) AddToCart(c *gin.Context) {
	var req addGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	game, err := h.Catalog.GetByExternalID(c.Request.Context(), req.GameID)
	if err != nil {
		failDomain(c, err)
		return
	}
	v, err := h.Svc.AddToCart(c.Request.Context(), c.GetString("userID"), game.RawgID, game.Name, game.EffectivePrice())
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, cartView(v), "added to cart", nil)
}

// RemoveFromCart DELETE /api/cart/:gameId
func (h *CollectionHandler) RemoveFromCart(c *gin.Context) {
	id, valid := gameIDParam(c)
	if !valid {
		return
	}
	v, err := h.Svc.RemoveFromCart(c.Request.Context(), c.GetString("userID"), id)
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, cartView(v), "removed from cart", nil)
}

// ClearCart DELETE /api/cart
func (h *CollectionHandler) ClearCart(c *gin.Context) {
	if err := h.Svc.ClearCart(c.Request.Context(), c.GetString("userID")); err != nil {
		failDomain(c, err)
		return
	}
	ok[any](c, http.StatusOK, gin.H{"cleared": true}, "cart cleared", nil)
}

// GetWishlist GET /api/wishlist
func (h *CollectionHandler) GetWishlist(c *gin.Context) {
	items, err := h.Svc.GetWishlist(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"items": items}, "wishlist", nil)
}

// AddToWishlist POST /api/wishlist
func (h *CollectionHandler) AddToWishlist(c *gin.Context) {
	var req addGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	game, err := h.Catalog.GetByExternalID(c.Request.Context(), req.GameID)
	if err != nil {
		failDomain(c, err)
		return
	}
	items, err := h.Svc.AddToWishlist(c.Request.Context(), c.GetString("userID"), game.RawgID, game.Name)
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"items": items}, "added to wishlist", nil)
}

// RemoveFromWishlist DELETE /api/wishlist/:gameId
func (h *CollectionHandler) RemoveFromWishlist(c *gin.Context) {
	id, valid := gameIDParam(c)
	if !valid {
		return
	}
	items, err := h.Svc.RemoveFromWishlist(c.Request.Context(), c.GetString("userID"), id)
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"items": items}, "removed from wishlist", nil)
}

// GetLibrary GET /api/library
func (h *CollectionHandler) GetLibrary(c *gin.Context) {
	items, err := h.Svc.GetLibrary(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"items": items}, "library", nil)
}
