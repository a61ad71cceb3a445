package models

import "time"

// Person is a gift recipient owned by exactly one user.
type Person struct {
	Base
	UserID       string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `json:"email,omitempty"`
	Relationship string     `json:"relationship"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	Notes        string     `json:"notes"`
	Avatar       string     `json:"avatar"`
	FamilyID     *string    `json:"family_id,omitempty"`
}

// TableName keeps the table name aligned with the API collection name.
func (Person) TableName() string { return "people" }
