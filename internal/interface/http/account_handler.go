package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gamevault/storefront/internal/application"
	"github.com/gamevault/storefront/internal/domain/entity"
	"github.com/gamevault/storefront/pkg/helpers"
	"github.com/gamevault/storefront/pkg/validation"
)

const dateLayout = "2006-01-02"

type AccountHandler struct {
	Svc     *application.AccountService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,pwd"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type updateProfileRequest struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	DateOfBirth     string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"omitempty,pwd"`
}

type updateSettingsRequest struct {
	ShowExplicitContent *bool `json:"showExplicitContent" binding:"required"`
	Newsletter          *bool `json:"newsletter" binding:"required"`
}

func profileView(u *entity.User) gin.H {
	dob := ""
	if !u.DateOfBirth.IsZero() {
		dob = u.DateOfBirth.Format(dateLayout)
	}
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"phone":       u.Phone,
		"avatarUrl":   u.AvatarURL,
		"dateOfBirth": dob,
		"role":        u.Role,
		"settings":    u.Settings,
		"createdAt":   u.CreatedAt,
		"updatedAt":   u.UpdatedAt,
	}
}

// Register POST /api/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"dateOfBirth": "must match datetime format: " + dateLayout})
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Phone:       req.Phone,
		DateOfBirth: dob,
	})
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusCreated, profileView(u), "account created", nil)
}

// Login POST /api/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failDomain(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	ok(c, http.StatusOK, profileView(u), "login successful", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Refresh POST /api/refresh
func (h *AccountHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		fail(c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	ok[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Logout POST /api/logout
func (h *AccountHandler) Logout(c *gin.Context) {
	if uid := c.GetString("userID"); uid != "" {
		h.Svc.Logout(c.Request.Context(), uid)
	}
	h.Cookies.Clear(c)
	ok[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// GetProfile GET /api/profile
func (h *AccountHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, profileView(u), "profile", nil)
}

// UpdateProfile PUT /api/profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	var dob time.Time
	if req.DateOfBirth != "" {
		var err error
		dob, err = time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"dateOfBirth": "must match datetime format: " + dateLayout})
			return
		}
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userID"), application.UpdateProfileInput{
		Name:            req.Name,
		Phone:           req.Phone,
		DateOfBirth:     dob,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, profileView(u), "profile updated", nil)
}

// UpdateSettings PUT /api/profile/settings
// The explicit-content opt-in is refused for minors; that decision lives
// in the user aggregate, not here.
func (h *AccountHandler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateSettings(c.Request.Context(), c.GetString("userID"), *req.ShowExplicitContent, *req.Newsletter)
	if err != nil {
		failDomain(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"settings": u.Settings}, "settings updated", nil)
}

// UploadAvatar POST /api/profile/avatar (multipart field "avatar")
func (h *AccountHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		fail(c, http.StatusBadRequest, "missing avatar file", nil)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "unreadable avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.Svc.UploadAvatar(c.Request.Context(), c.GetString("userID"), f, fileHeader.Filename, contentType)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("avatar upload failed")
		}
		fail(c, http.StatusInternalServerError, "avatar upload failed", nil)
		return
	}
	ok(c, http.StatusOK, gin.H{"avatarUrl": url}, "avatar updated", nil)
}
