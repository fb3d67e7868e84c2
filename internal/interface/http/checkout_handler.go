package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/storefront/internal/application"
	"github.com/gamevault/storefront/pkg/validation"
)

type CheckoutHandler struct {
	Svc    *application.CheckoutService
	Logger *logrus.Logger
}

func NewCheckoutHandler(svc *application.CheckoutService, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{Svc: svc, Logger: logger}
}

type purchaseRequest struct {
	GameID        int64  `json:"gameId" binding:"required,gt=0"`
	PaymentMethod string `json:"paymentMethod" binding:"required,payment"`
}

type checkoutRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required,payment"`
}

// Purchase POST /api/purchase buys a single game at the current catalog
// price.
func (h *CheckoutHandler) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	receipt, err := h.Svc.PurchaseGame(c.Request.Context(), c.GetString("userID"), req.GameID, req.PaymentMethod)
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, receipt, "purchase complete", nil)
}

// Checkout POST /api/cart/checkout buys the whole cart at the prices
// captured when each entry was added.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	receipt, err := h.Svc.CheckoutCart(c.Request.Context(), c.GetString("userID"), req.PaymentMethod)
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, receipt, "checkout complete", nil)
}

// History GET /api/purchases lists owned games, most recent first.
func (h *CheckoutHandler) History(c *gin.Context) {
	items, err := h.Svc.History(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"items": items}, "purchase history", nil)
}
