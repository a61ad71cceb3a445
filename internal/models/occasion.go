package models

import "time"

// OccasionType classifies an occasion.
type OccasionType string

const (
	OccasionTypeBirthday    OccasionType = "birthday"
	OccasionTypeAnniversary OccasionType = "anniversary"
	OccasionTypeHoliday     OccasionType = "holiday"
	OccasionTypeOther       OccasionType = "other"
)

// Occasion is a dated event, optionally tied to a person, with an optional
// spending ceiling in minor units.
type Occasion struct {
	Base
	UserID       string       `gorm:"type:uuid;not null;index" json:"user_id"`
	PersonID     *string      `gorm:"type:uuid;index" json:"person_id,omitempty"`
	Name         string       `gorm:"not null" json:"name"`
	Type         OccasionType `gorm:"not null;default:'other'" json:"type"`
	Date         time.Time    `gorm:"not null;index" json:"date"`
	BudgetAmount *int64       `json:"budget_amount,omitempty"`
	Recurring    bool         `gorm:"default:false" json:"recurring"`
	Notes        string       `json:"notes"`
}
