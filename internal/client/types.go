package client

import (
	"net/url"
	"time"
)

// Preferences are the user's display settings.
type Preferences struct {
	Currency      string `json:"currency"`
	Timezone      string `json:"timezone"`
	Notifications bool   `json:"notifications"`
	Theme         string `json:"theme"`
}

// User is the profile of an account.
type User struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// Page is one page of a list response.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Person is someone the user buys gifts for.
type Person struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Relationship string     `json:"relationship"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	Notes        string     `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PersonInput is the body of a create-person call.
type PersonInput struct {
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Relationship string     `json:"relationship,omitempty"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// Gift is a present planned for or given to a person. Price is in minor
// units of Currency.
type Gift struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	OccasionID  *string   `json:"occasion_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	URL         string    `json:"url,omitempty"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// GiftInput is the body of a create-gift call.
type GiftInput struct {
	RecipientID string  `json:"recipient_id"`
	OccasionID  *string `json:"occasion_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       int64   `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	Status      string  `json:"status,omitempty"`
	URL         string  `json:"url,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// GiftQuery filters a gift listing. Empty fields are not sent.
type GiftQuery struct {
	Status      string
	RecipientID string
	OccasionID  string
}

func (q GiftQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.RecipientID != "" {
		v.Set("recipient_id", q.RecipientID)
	}
	if q.OccasionID != "" {
		v.Set("occasion_id", q.OccasionID)
	}
	return v
}

// Occasion is a dated event, optionally tied to a person.
type Occasion struct {
	ID           string    `json:"id"`
	PersonID     *string   `json:"person_id,omitempty"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Date         time.Time `json:"date"`
	BudgetAmount *int64    `json:"budget_amount,omitempty"`
	Recurring    bool      `json:"recurring"`
	Notes        string    `json:"notes"`
}

// OccasionInput is the body of a create-occasion call.
type OccasionInput struct {
	PersonID     *string   `json:"person_id,omitempty"`
	Name         string    `json:"name"`
	Type         string    `json:"type,omitempty"`
	Date         time.Time `json:"date"`
	BudgetAmount *int64    `json:"budget_amount,omitempty"`
	Recurring    bool      `json:"recurring"`
	Notes        string    `json:"notes,omitempty"`
}

// Budget is a spending envelope. Amount is in minor units of Currency.
type Budget struct {
	ID         string     `json:"id"`
	PersonID   *string    `json:"person_id,omitempty"`
	OccasionID *string    `json:"occasion_id,omitempty"`
	Name       string     `json:"name"`
	Amount     int64      `json:"amount"`
	Currency   string     `json:"currency"`
	Period     string     `json:"period"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

// BudgetInput is the body of a create-budget call.
type BudgetInput struct {
	PersonID   *string    `json:"person_id,omitempty"`
	OccasionID *string    `json:"occasion_id,omitempty"`
	Name       string     `json:"name"`
	Amount     int64      `json:"amount"`
	Currency   string     `json:"currency,omitempty"`
	Period     string     `json:"period"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}
