package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"giftwise/internal/auth"
	apperrors "giftwise/internal/errors"
	"giftwise/internal/logger"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextClaims = "claims"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*auth.Claims, error)
}

// RevocationChecker reports whether a token id was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// AuthMiddleware verifies the bearer token and sets the caller's identity in
// the context. A missing or malformed header is UNAUTHORIZED; a token that
// fails verification or was logged out is INVALID_TOKEN. revocations may be nil.
func AuthMiddleware(verifier TokenVerifier, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		tokenString, ok := BearerToken(authHeader)
		if !ok {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := verifier.VerifyToken(tokenString)
		if err != nil {
			abortWithError(c, err)
			return
		}

		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Get().Errorw("revocation lookup failed", "error", err, "jti", claims.ID)
				abortWithError(c, apperrors.ErrInternalServer)
				return
			}
			if revoked {
				abortWithError(c, apperrors.ErrInvalidToken)
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}
