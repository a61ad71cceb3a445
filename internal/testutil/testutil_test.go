package testutil_test

import (
	"testing"

	"giftwise/internal/errors"
	"giftwise/internal/models"
	"giftwise/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)

	var count int64
	for _, table := range []string{"users", "people", "gifts", "occasions", "budgets", "revoked_tokens", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	second := testutil.SetupTestDB(t)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected isolated databases, second has %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	person := testutil.CreateTestPerson(t, db, user.ID)
	if person.UserID != user.ID {
		t.Errorf("expected person owned by %s, got %s", user.ID, person.UserID)
	}

	occasion := testutil.CreateTestOccasion(t, db, user.ID, &person.ID)
	if occasion.PersonID == nil || *occasion.PersonID != person.ID {
		t.Errorf("expected occasion linked to person")
	}

	gift := testutil.CreateTestGift(t, db, user.ID, person.ID)
	if gift.Status != models.GiftStatusPlanned {
		t.Errorf("expected planned gift, got %s", gift.Status)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID)
	if budget.Amount != 10000 {
		t.Errorf("expected budget amount 10000, got %d", budget.Amount)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrGiftNotFound, "custom message")
	testutil.AssertAppError(t, err, "GIFT_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
