package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"giftwise/internal/auth"
	apperrors "giftwise/internal/errors"
	"giftwise/internal/logger"
	"giftwise/internal/middleware"
	"giftwise/internal/models"
	"giftwise/internal/services"
)

// Authenticator is the part of auth.Authenticator the handlers use.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (*models.User, *auth.Token, error)
	Login(ctx context.Context, email, password string) (*models.User, *auth.Token, error)
	VerifyToken(tokenString string) (*auth.Claims, error)
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authenticator Authenticator
	revocations   services.RevocationServicer
	auditService  services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authenticator Authenticator, revocations services.RevocationServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{authenticator: authenticator, revocations: revocations, auditService: auditService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// MessageResponse is a body carrying only a human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Register handles user registration
// @Summary     Register a new user
// @Description Create an account and return a session token for it
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} AuthResponse "User registered and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input or email taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, token, err := h.authenticator.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), user.ID, services.AuditActionRegister, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusCreated, AuthResponse{Token: token.Value, ExpiresAt: token.ExpiresAt, User: user})
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, token, err := h.authenticator.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), user.ID, services.AuditActionLogin, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, AuthResponse{Token: token.Value, ExpiresAt: token.ExpiresAt, User: user})
}

// Logout ends the session. A valid bearer token is revoked until it expires;
// without one the call still succeeds, since the client discards its token
// either way.
// @Summary     Logout
// @Description Revoke the presented session token
// @Tags        auth
// @Produce     json
// @Param       Authorization header string false "Bearer token"
// @Success     200 {object} MessageResponse "Logged out"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if tokenString, ok := middleware.BearerToken(c.GetHeader("Authorization")); ok {
		if claims, err := h.authenticator.VerifyToken(tokenString); err == nil {
			ctx := c.Request.Context()
			if err := h.revocations.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
				logger.Get().Warnw("failed to revoke token on logout", "user_id", claims.UserID, "error", err)
			} else {
				h.auditService.Log(ctx, claims.UserID, services.AuditActionLogout, "user", claims.UserID, c.ClientIP(), nil)
			}
		}
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}
