package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/logger"
	"giftwise/internal/middleware"
	"giftwise/internal/uuid"
)

// dateLayout is accepted alongside RFC 3339 in query parameters.
const dateLayout = "2006-01-02"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code" example:"INVALID_INPUT"`
	Message string `json:"message" example:"Invalid input"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID validates a UUID path parameter and returns it in canonical form.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// optionalQueryID reads an optional UUID query parameter.
func optionalQueryID(c *gin.Context, param string) (*string, error) {
	raw := c.Query(param)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return &id, nil
}

// optionalQueryDate reads an optional date query parameter given as
// YYYY-MM-DD (midnight UTC, dateOnly set) or RFC 3339. The result is in UTC.
func optionalQueryDate(c *gin.Context, param string) (t *time.Time, dateOnly bool, err error) {
	raw := c.Query(param)
	if raw == "" {
		return nil, false, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		parsed = parsed.UTC()
		return &parsed, false, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, param+" must be YYYY-MM-DD or RFC 3339")
	}
	return &parsed, true, nil
}

// normalizeRef canonicalizes an optional reference from a request body. An
// empty string is kept: on update it clears the link.
func normalizeRef(id *string, field string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return id, nil
	}
	parsed, err := uuid.Parse(strings.TrimSpace(*id))
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidReference, field+" does not exist")
	}
	return &parsed, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, ErrorResponse{Code: appErr.Code, Message: appErr.Message})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, ErrorResponse{
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
	})
}
