package models

import "time"

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
	BudgetPeriodCustom  BudgetPeriod = "custom"
)

// Budget is a spending envelope, optionally scoped to a person or occasion.
// Custom periods carry an explicit EndDate.
type Budget struct {
	Base
	UserID     string       `gorm:"type:uuid;not null;index" json:"user_id"`
	PersonID   *string      `gorm:"type:uuid;index" json:"person_id,omitempty"`
	OccasionID *string      `gorm:"type:uuid;index" json:"occasion_id,omitempty"`
	Name       string       `gorm:"not null" json:"name"`
	Amount     int64        `gorm:"not null" json:"amount"`
	Currency   string       `gorm:"not null;default:'USD'" json:"currency"`
	Period     BudgetPeriod `gorm:"not null" json:"period"`
	StartDate  time.Time    `gorm:"not null" json:"start_date"`
	EndDate    *time.Time   `json:"end_date,omitempty"`
}
