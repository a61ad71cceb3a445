package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/models"
	"giftwise/internal/pagination"
)

// occasionService handles occasion-related business logic.
type occasionService struct {
	db *gorm.DB
}

// NewOccasionService creates a new OccasionServicer.
func NewOccasionService(db *gorm.DB) OccasionServicer {
	return &occasionService{db: db}
}

func validOccasionType(t models.OccasionType) bool {
	switch t {
	case models.OccasionTypeBirthday, models.OccasionTypeAnniversary, models.OccasionTypeHoliday, models.OccasionTypeOther:
		return true
	}
	return false
}

// CreateOccasion adds a dated event, optionally tied to one of the user's people.
func (s *occasionService) CreateOccasion(ctx context.Context, userID string, in CreateOccasionInput) (*models.Occasion, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if in.Date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}
	occasionType := in.Type
	if occasionType == "" {
		occasionType = models.OccasionTypeOther
	}
	if !validOccasionType(occasionType) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown occasion type")
	}
	if in.BudgetAmount != nil && *in.BudgetAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget_amount cannot be negative")
	}

	occasion := &models.Occasion{
		UserID:       userID,
		PersonID:     optionalRef(in.PersonID),
		Name:         name,
		Type:         occasionType,
		Date:         in.Date.UTC(),
		BudgetAmount: in.BudgetAmount,
		Recurring:    in.Recurring,
		Notes:        in.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if occasion.PersonID != nil {
			if err := requirePerson(tx, userID, *occasion.PersonID, "person"); err != nil {
				return err
			}
		}
		return tx.Create(occasion).Error
	})
	if err != nil {
		return nil, passThrough(err)
	}
	return occasion, nil
}

// GetUserOccasions lists the user's occasions by date, soonest first. From and
// To bound the date inclusively, Before exclusively.
func (s *occasionService) GetUserOccasions(ctx context.Context, userID string, page pagination.PageRequest, filter OccasionFilter) (*pagination.PageResponse[models.Occasion], error) {
	query := s.db.WithContext(ctx).Model(&models.Occasion{}).Where("user_id = ?", userID)
	if filter.PersonID != nil {
		query = query.Where("person_id = ?", *filter.PersonID)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("date <= ?", filter.To.UTC())
	}
	if filter.Before != nil {
		query = query.Where("date < ?", filter.Before.UTC())
	}

	result, err := pagination.Find[models.Occasion](query.Order("date ASC, id ASC"), page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetOccasionByID returns an occasion by ID if it belongs to the user.
func (s *occasionService) GetOccasionByID(ctx context.Context, userID, occasionID string) (*models.Occasion, error) {
	var occasion models.Occasion
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", occasionID, userID).First(&occasion).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrOccasionNotFound)
	}
	return &occasion, nil
}

// UpdateOccasion applies the non-nil fields of in.
func (s *occasionService) UpdateOccasion(ctx context.Context, userID, occasionID string, in UpdateOccasionInput) (*models.Occasion, error) {
	updates := make(map[string]interface{})
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Type != nil {
		if !validOccasionType(*in.Type) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown occasion type")
		}
		updates["type"] = *in.Type
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date cannot be empty")
		}
		updates["date"] = in.Date.UTC()
	}
	if in.BudgetAmount != nil {
		if *in.BudgetAmount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget_amount cannot be negative")
		}
		updates["budget_amount"] = *in.BudgetAmount
	}
	if in.Recurring != nil {
		updates["recurring"] = *in.Recurring
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var occasion models.Occasion
		if err := tx.Where("id = ? AND user_id = ?", occasionID, userID).First(&occasion).Error; err != nil {
			return notFoundOr(err, apperrors.ErrOccasionNotFound)
		}

		if in.PersonID != nil {
			personID := optionalRef(in.PersonID)
			if personID != nil {
				if err := requirePerson(tx, userID, *personID, "person"); err != nil {
					return err
				}
			}
			updates["person_id"] = refColumn(personID)
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&occasion).Updates(updates).Error
	})
	if err != nil {
		return nil, passThrough(err)
	}
	return s.GetOccasionByID(ctx, userID, occasionID)
}

// DeleteOccasion soft-deletes an occasion. Gifts and budgets linked to it
// keep existing with the link cleared.
func (s *occasionService) DeleteOccasion(ctx context.Context, userID, occasionID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var occasion models.Occasion
		if err := tx.Where("id = ? AND user_id = ?", occasionID, userID).First(&occasion).Error; err != nil {
			return notFoundOr(err, apperrors.ErrOccasionNotFound)
		}

		if err := tx.Model(&models.Gift{}).Where("user_id = ? AND occasion_id = ?", userID, occasionID).
			Update("occasion_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Budget{}).Where("user_id = ? AND occasion_id = ?", userID, occasionID).
			Update("occasion_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&occasion).Error
	})
	if err != nil {
		return passThrough(err)
	}
	return nil
}
