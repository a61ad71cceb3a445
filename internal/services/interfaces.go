package services

import (
	"context"
	"time"

	"giftwise/internal/models"
	"giftwise/internal/pagination"
)

// UserServicer is the credential store: durable user records keyed by a
// unique, lowercase email.
type UserServicer interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateProfile(ctx context.Context, id, name string) (*models.User, error)
	UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) (*models.User, error)
}

// CreatePersonInput holds the fields of a new person.
type CreatePersonInput struct {
	Name         string
	Email        string
	Relationship string
	Birthday     *time.Time
	Notes        string
	Avatar       string
	FamilyID     *string
}

// UpdatePersonInput holds the fields to change; nil leaves a field as is.
type UpdatePersonInput struct {
	Name         *string
	Email        *string
	Relationship *string
	Birthday     *time.Time
	Notes        *string
	Avatar       *string
	FamilyID     *string
}

// PersonServicer defines the contract for person-related business logic.
type PersonServicer interface {
	CreatePerson(ctx context.Context, userID string, in CreatePersonInput) (*models.Person, error)
	GetUserPeople(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Person], error)
	GetPersonByID(ctx context.Context, userID, personID string) (*models.Person, error)
	UpdatePerson(ctx context.Context, userID, personID string, in UpdatePersonInput) (*models.Person, error)
	DeletePerson(ctx context.Context, userID, personID string) error
}

// CreateGiftInput holds the fields of a new gift. An empty Currency falls
// back to the owner's preferred currency; an empty Status to planned.
type CreateGiftInput struct {
	RecipientID string
	OccasionID  *string
	Name        string
	Description string
	Price       int64
	Currency    string
	Status      models.GiftStatus
	URL         string
	Notes       string
}

// UpdateGiftInput holds the fields to change; nil leaves a field as is and an
// empty OccasionID clears the link.
type UpdateGiftInput struct {
	RecipientID *string
	OccasionID  *string
	Name        *string
	Description *string
	Price       *int64
	Currency    *string
	Status      *models.GiftStatus
	URL         *string
	Notes       *string
}

// GiftFilter holds optional filters for listing gifts.
type GiftFilter struct {
	Status      *models.GiftStatus
	RecipientID *string
	OccasionID  *string
}

// GiftServicer defines the contract for gift-related business logic.
type GiftServicer interface {
	CreateGift(ctx context.Context, userID string, in CreateGiftInput) (*models.Gift, error)
	GetUserGifts(ctx context.Context, userID string, page pagination.PageRequest, filter GiftFilter) (*pagination.PageResponse[models.Gift], error)
	GetGiftByID(ctx context.Context, userID, giftID string) (*models.Gift, error)
	UpdateGift(ctx context.Context, userID, giftID string, in UpdateGiftInput) (*models.Gift, error)
	DeleteGift(ctx context.Context, userID, giftID string) error
}

// CreateOccasionInput holds the fields of a new occasion.
type CreateOccasionInput struct {
	PersonID     *string
	Name         string
	Type         models.OccasionType
	Date         time.Time
	BudgetAmount *int64
	Recurring    bool
	Notes        string
}

// UpdateOccasionInput holds the fields to change; nil leaves a field as is
// and an empty PersonID clears the link.
type UpdateOccasionInput struct {
	PersonID     *string
	Name         *string
	Type         *models.OccasionType
	Date         *time.Time
	BudgetAmount *int64
	Recurring    *bool
	Notes        *string
}

// OccasionFilter holds optional filters for listing occasions.
type OccasionFilter struct {
	PersonID *string
	From     *time.Time
	To       *time.Time
	Before   *time.Time
}

// OccasionServicer defines the contract for occasion-related business logic.
type OccasionServicer interface {
	CreateOccasion(ctx context.Context, userID string, in CreateOccasionInput) (*models.Occasion, error)
	GetUserOccasions(ctx context.Context, userID string, page pagination.PageRequest, filter OccasionFilter) (*pagination.PageResponse[models.Occasion], error)
	GetOccasionByID(ctx context.Context, userID, occasionID string) (*models.Occasion, error)
	UpdateOccasion(ctx context.Context, userID, occasionID string, in UpdateOccasionInput) (*models.Occasion, error)
	DeleteOccasion(ctx context.Context, userID, occasionID string) error
}

// CreateBudgetInput holds the fields of a new budget.
type CreateBudgetInput struct {
	PersonID   *string
	OccasionID *string
	Name       string
	Amount     int64
	Currency   string
	Period     models.BudgetPeriod
	StartDate  time.Time
	EndDate    *time.Time
}

// UpdateBudgetInput holds the fields to change; nil leaves a field as is and
// an empty PersonID/OccasionID clears the link.
type UpdateBudgetInput struct {
	PersonID   *string
	OccasionID *string
	Name       *string
	Amount     *int64
	Currency   *string
	Period     *models.BudgetPeriod
	StartDate  *time.Time
	EndDate    *time.Time
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(ctx context.Context, userID string, in CreateBudgetInput) (*models.Budget, error)
	GetUserBudgets(ctx context.Context, userID string, page pagination.PageRequest, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error)
	UpdateBudget(ctx context.Context, userID, budgetID string, in UpdateBudgetInput) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
}

// RevocationServicer keeps the set of logged-out token ids.
type RevocationServicer interface {
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
