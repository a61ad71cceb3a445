package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"giftwise/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: string(hash),
		Preferences:  models.DefaultPreferences(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPerson creates a person owned by userID.
func CreateTestPerson(t *testing.T, db *gorm.DB, userID string) *models.Person {
	t.Helper()

	person := &models.Person{
		UserID:       userID,
		Name:         fmt.Sprintf("Test Person %d", nextID()),
		Relationship: "friend",
	}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("failed to create test person: %v", err)
	}
	return person
}

// CreateTestOccasion creates an "other" occasion 30 days from now.
func CreateTestOccasion(t *testing.T, db *gorm.DB, userID string, personID *string) *models.Occasion {
	t.Helper()

	occasion := &models.Occasion{
		UserID:   userID,
		PersonID: personID,
		Name:     fmt.Sprintf("Test Occasion %d", nextID()),
		Type:     models.OccasionTypeOther,
		Date:     time.Now().AddDate(0, 0, 30).UTC().Truncate(time.Second),
	}
	if err := db.Create(occasion).Error; err != nil {
		t.Fatalf("failed to create test occasion: %v", err)
	}
	return occasion
}

// CreateTestGift creates a planned gift for recipientID priced at $25.00.
func CreateTestGift(t *testing.T, db *gorm.DB, userID, recipientID string) *models.Gift {
	t.Helper()

	gift := &models.Gift{
		UserID:      userID,
		RecipientID: recipientID,
		Name:        fmt.Sprintf("Test Gift %d", nextID()),
		Price:       2500,
		Currency:    "USD",
		Status:      models.GiftStatusPlanned,
	}
	if err := db.Create(gift).Error; err != nil {
		t.Fatalf("failed to create test gift: %v", err)
	}
	return gift
}

// CreateTestBudget creates a monthly $100.00 budget.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:    userID,
		Name:      fmt.Sprintf("Test Budget %d", nextID()),
		Amount:    10000,
		Currency:  "USD",
		Period:    models.BudgetPeriodMonthly,
		StartDate: time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
