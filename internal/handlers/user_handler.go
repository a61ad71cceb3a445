package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/services"
)

// UserHandler serves the caller's own account.
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// UpdateProfileRequest represents the request payload for renaming the user.
type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UpdatePreferencesRequest holds the preference fields to change.
type UpdatePreferencesRequest struct {
	Currency      *string `json:"currency" binding:"omitempty,iso4217"`
	Timezone      *string `json:"timezone" binding:"omitempty,timezone"`
	Notifications *bool   `json:"notifications"`
	Theme         *string `json:"theme" binding:"omitempty,theme"`
}

// Validate confirms the token still names an existing user and returns the
// profile.
// @Summary     Validate session
// @Description Return the profile of the user the bearer token belongs to
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.User "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User no longer exists"
// @Router      /user/validate [get]
func (h *UserHandler) Validate(c *gin.Context) {
	h.GetProfile(c)
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile information
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.User "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /user/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile changes the user's display name.
// @Summary     Update user profile
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile fields"
// @Success     200 {object} models.User "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /user/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionUpdate, "user", userID, c.ClientIP(),
		map[string]interface{}{"name": user.Name})

	c.JSON(http.StatusOK, user)
}

// UpdatePreferences merges the given fields into the user's preferences.
// @Summary     Update user preferences
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdatePreferencesRequest true "Preference fields"
// @Success     200 {object} models.User "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /user/preferences [put]
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	ctx := c.Request.Context()
	user, err := h.userService.GetUserByID(ctx, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	prefs := user.Preferences
	if req.Currency != nil {
		prefs.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Timezone != nil {
		prefs.Timezone = *req.Timezone
	}
	if req.Notifications != nil {
		prefs.Notifications = *req.Notifications
	}
	if req.Theme != nil {
		prefs.Theme = *req.Theme
	}

	user, err = h.userService.UpdatePreferences(ctx, userID, prefs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ctx, userID, services.AuditActionUpdate, "preferences", userID, c.ClientIP(),
		map[string]interface{}{"preferences": prefs})

	c.JSON(http.StatusOK, user)
}
