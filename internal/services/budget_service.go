package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/models"
	"giftwise/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

func validBudgetPeriod(p models.BudgetPeriod) bool {
	switch p {
	case models.BudgetPeriodMonthly, models.BudgetPeriodYearly, models.BudgetPeriodCustom:
		return true
	}
	return false
}

// checkBudgetWindow enforces that custom budgets have an end date and that
// any end date falls after the start.
func checkBudgetWindow(period models.BudgetPeriod, start time.Time, end *time.Time) error {
	if period == models.BudgetPeriodCustom && end == nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "custom budgets need an end_date")
	}
	if end != nil && !end.After(start) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must be after start_date")
	}
	return nil
}

// checkBudgetRefs validates the optional person and occasion links.
func checkBudgetRefs(tx *gorm.DB, userID string, personID, occasionID *string) error {
	if personID != nil {
		if err := requirePerson(tx, userID, *personID, "person"); err != nil {
			return err
		}
	}
	if occasionID != nil {
		if err := requireOccasion(tx, userID, *occasionID); err != nil {
			return err
		}
	}
	return nil
}

// CreateBudget creates a spending envelope, optionally scoped to a person or occasion.
func (s *budgetService) CreateBudget(ctx context.Context, userID string, in CreateBudgetInput) (*models.Budget, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if in.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if !validBudgetPeriod(in.Period) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown budget period")
	}
	start := in.StartDate.UTC()
	if start.IsZero() {
		start = time.Now().UTC().Truncate(24 * time.Hour)
	}
	end := utcPtr(in.EndDate)
	if err := checkBudgetWindow(in.Period, start, end); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:     userID,
		PersonID:   optionalRef(in.PersonID),
		OccasionID: optionalRef(in.OccasionID),
		Name:       name,
		Amount:     in.Amount,
		Currency:   strings.ToUpper(in.Currency),
		Period:     in.Period,
		StartDate:  start,
		EndDate:    end,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkBudgetRefs(tx, userID, budget.PersonID, budget.OccasionID); err != nil {
			return err
		}
		if budget.Currency == "" {
			budget.Currency = preferredCurrency(tx, userID)
		}
		return tx.Create(budget).Error
	})
	if err != nil {
		return nil, passThrough(err)
	}
	return budget, nil
}

// GetUserBudgets returns the user's budgets, newest first, optionally filtered by period.
func (s *budgetService) GetUserBudgets(ctx context.Context, userID string, page pagination.PageRequest, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error) {
	query := s.db.WithContext(ctx).Model(&models.Budget{}).Where("user_id = ?", userID)
	if period != nil {
		query = query.Where("period = ?", *period)
	}

	result, err := pagination.Find[models.Budget](query.Order("created_at DESC, id DESC"), page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrBudgetNotFound)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields. The resulting period and
// date window are validated as a whole.
func (s *budgetService) UpdateBudget(ctx context.Context, userID, budgetID string, in UpdateBudgetInput) (*models.Budget, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var budget models.Budget
		if err := tx.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
			return notFoundOr(err, apperrors.ErrBudgetNotFound)
		}

		updates := make(map[string]interface{})
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
			}
			updates["name"] = name
		}
		if in.Amount != nil {
			if *in.Amount <= 0 {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
			}
			updates["amount"] = *in.Amount
		}
		if in.Currency != nil && *in.Currency != "" {
			updates["currency"] = strings.ToUpper(*in.Currency)
		}

		period, start, end := budget.Period, budget.StartDate, budget.EndDate
		if in.Period != nil {
			if !validBudgetPeriod(*in.Period) {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown budget period")
			}
			period = *in.Period
			updates["period"] = period
		}
		if in.StartDate != nil {
			start = in.StartDate.UTC()
			updates["start_date"] = start
		}
		if in.EndDate != nil {
			end = utcPtr(in.EndDate)
			updates["end_date"] = *end
		}
		if err := checkBudgetWindow(period, start, end); err != nil {
			return err
		}

		var personID, occasionID *string
		if in.PersonID != nil {
			personID = optionalRef(in.PersonID)
			updates["person_id"] = refColumn(personID)
		}
		if in.OccasionID != nil {
			occasionID = optionalRef(in.OccasionID)
			updates["occasion_id"] = refColumn(occasionID)
		}
		if err := checkBudgetRefs(tx, userID, personID, occasionID); err != nil {
			return err
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&budget).Updates(updates).Error
	})
	if err != nil {
		return nil, passThrough(err)
	}
	return s.GetBudgetByID(ctx, userID, budgetID)
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	budget, err := s.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
