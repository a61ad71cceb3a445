package models

// GiftStatus is the lifecycle label of a gift. Any value may follow any
// other; the order below is only the usual progression.
type GiftStatus string

const (
	GiftStatusPlanned   GiftStatus = "planned"
	GiftStatusPurchased GiftStatus = "purchased"
	GiftStatusWrapped   GiftStatus = "wrapped"
	GiftStatusGiven     GiftStatus = "given"
)

// IsValid reports whether s is one of the known statuses.
func (s GiftStatus) IsValid() bool {
	switch s {
	case GiftStatusPlanned, GiftStatusPurchased, GiftStatusWrapped, GiftStatusGiven:
		return true
	}
	return false
}

// Gift is an idea or purchase for a recipient. Price is in minor units of
// Currency (cents for USD).
type Gift struct {
	Base
	UserID      string     `gorm:"type:uuid;not null;index" json:"user_id"`
	RecipientID string     `gorm:"type:uuid;not null;index" json:"recipient_id"`
	OccasionID  *string    `gorm:"type:uuid;index" json:"occasion_id,omitempty"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description"`
	Price       int64      `gorm:"not null;default:0" json:"price"`
	Currency    string     `gorm:"not null;default:'USD'" json:"currency"`
	Status      GiftStatus `gorm:"not null;default:'planned'" json:"status"`
	URL         string     `json:"url,omitempty"`
	Notes       string     `json:"notes"`
}
