package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/models"
	"giftwise/internal/pagination"
)

// giftService handles gift-related business logic.
type giftService struct {
	db *gorm.DB
}

// NewGiftService creates a new GiftServicer.
func NewGiftService(db *gorm.DB) GiftServicer {
	return &giftService{db: db}
}

// CreateGift records a gift for one of the user's people. The recipient and
// the optional occasion are checked in the same transaction as the insert.
func (s *giftService) CreateGift(ctx context.Context, userID string, in CreateGiftInput) (*models.Gift, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if in.Price < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price cannot be negative")
	}
	status := in.Status
	if status == "" {
		status = models.GiftStatusPlanned
	}
	if !status.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown gift status")
	}

	gift := &models.Gift{
		UserID:      userID,
		RecipientID: strings.TrimSpace(in.RecipientID),
		OccasionID:  optionalRef(in.OccasionID),
		Name:        name,
		Description: in.Description,
		Price:       in.Price,
		Currency:    strings.ToUpper(in.Currency),
		Status:      status,
		URL:         in.URL,
		Notes:       in.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if gift.RecipientID == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidReference, "recipient does not exist")
		}
		if err := requirePerson(tx, userID, gift.RecipientID, "recipient"); err != nil {
			return err
		}
		if gift.OccasionID != nil {
			if err := requireOccasion(tx, userID, *gift.OccasionID); err != nil {
				return err
			}
		}
		if gift.Currency == "" {
			gift.Currency = preferredCurrency(tx, userID)
		}
		return tx.Create(gift).Error
	})
	if err != nil {
		return nil, passThrough(err)
	}
	return gift, nil
}

// GetUserGifts lists the user's gifts, newest first, with optional filters.
func (s *giftService) GetUserGifts(ctx context.Context, userID string, page pagination.PageRequest, filter GiftFilter) (*pagination.PageResponse[models.Gift], error) {
	query := s.db.WithContext(ctx).Model(&models.Gift{}).Where("user_id = ?", userID)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RecipientID != nil {
		query = query.Where("recipient_id = ?", *filter.RecipientID)
	}
	if filter.OccasionID != nil {
		query = query.Where("occasion_id = ?", *filter.OccasionID)
	}

	result, err := pagination.Find[models.Gift](query.Order("created_at DESC, id DESC"), page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetGiftByID returns a gift by ID if it belongs to the user.
func (s *giftService) GetGiftByID(ctx context.Context, userID, giftID string) (*models.Gift, error) {
	var gift models.Gift
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", giftID, userID).First(&gift).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrGiftNotFound)
	}
	return &gift, nil
}

// UpdateGift applies the non-nil fields of in. Status may move to any valid
// value, including backwards.
func (s *giftService) UpdateGift(ctx context.Context, userID, giftID string, in UpdateGiftInput) (*models.Gift, error) {
	updates := make(map[string]interface{})
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "price cannot be negative")
		}
		updates["price"] = *in.Price
	}
	if in.Currency != nil && *in.Currency != "" {
		updates["currency"] = strings.ToUpper(*in.Currency)
	}
	if in.Status != nil {
		if !in.Status.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown gift status")
		}
		updates["status"] = *in.Status
	}
	if in.URL != nil {
		updates["url"] = *in.URL
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gift models.Gift
		if err := tx.Where("id = ? AND user_id = ?", giftID, userID).First(&gift).Error; err != nil {
			return notFoundOr(err, apperrors.ErrGiftNotFound)
		}

		if in.RecipientID != nil {
			recipient := strings.TrimSpace(*in.RecipientID)
			if recipient == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidReference, "recipient does not exist")
			}
			if err := requirePerson(tx, userID, recipient, "recipient"); err != nil {
				return err
			}
			updates["recipient_id"] = recipient
		}
		if in.OccasionID != nil {
			occasionID := optionalRef(in.OccasionID)
			if occasionID != nil {
				if err := requireOccasion(tx, userID, *occasionID); err != nil {
					return err
				}
			}
			updates["occasion_id"] = refColumn(occasionID)
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&gift).Updates(updates).Error
	})
	if err != nil {
		return nil, passThrough(err)
	}
	return s.GetGiftByID(ctx, userID, giftID)
}

// DeleteGift soft-deletes a gift.
func (s *giftService) DeleteGift(ctx context.Context, userID, giftID string) error {
	gift, err := s.GetGiftByID(ctx, userID, giftID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(gift).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
