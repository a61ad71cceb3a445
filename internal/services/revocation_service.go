package services

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/logger"
	"giftwise/internal/models"
)

// revocationService stores the ids of tokens that were logged out before
// they expired.
type revocationService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRevocationService creates a new RevocationServicer.
func NewRevocationService(db *gorm.DB) RevocationServicer {
	return NewRevocationServiceWithClock(db, time.Now)
}

// NewRevocationServiceWithClock is NewRevocationService on a custom clock,
// which must agree with the one tokens are verified against.
func NewRevocationServiceWithClock(db *gorm.DB, now func() time.Time) RevocationServicer {
	if now == nil {
		now = time.Now
	}
	return &revocationService{db: db, now: now}
}

// Revoke records jti until expiresAt. Revoking an id twice is a no-op.
// Entries whose tokens have already expired are pruned on the way.
func (s *revocationService) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	if jti == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "token id is required")
	}
	db := s.db.WithContext(ctx)

	if err := db.Where("expires_at <= ?", s.now()).Delete(&models.RevokedToken{}).Error; err != nil {
		logger.Get().Warnw("failed to prune revoked tokens", "error", err)
	}

	entry := &models.RevokedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// IsRevoked reports whether jti was logged out and is still within its lifetime.
func (s *revocationService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ? AND expires_at > ?", jti, s.now()).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
