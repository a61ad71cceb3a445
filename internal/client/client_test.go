package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"giftwise/internal/config"
	"giftwise/internal/logger"
	"giftwise/internal/server"
	"giftwise/internal/testutil"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger.Init("test")

	cfg := &config.Config{
		Env:                "test",
		CORSAllowedOrigins: []string{"*"},
		DBDriver:           config.DriverSQLite,
		JWTSecret:          "client-test-secret-0123456789abcdef",
		JWTExpirationDur:   time.Hour,
		BcryptCost:         bcrypt.MinCost,
	}
	srv, err := server.New(cfg, testutil.SetupTestDB(t), server.Options{})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestSessionAgainstAPI(t *testing.T) {
	ts := newAPIServer(t)
	ctx := context.Background()
	store := NewFileTokenStore(t.TempDir() + "/token")

	s := NewSession(New(ts.URL, ts.Client()), store)
	user, err := s.Register(ctx, "Alice", "alice@example.com", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "USD", user.Preferences.Currency)

	person, err := s.AddPerson(ctx, PersonInput{Name: "Mom", Relationship: "family"})
	require.NoError(t, err)

	date := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)
	occasion, err := s.AddOccasion(ctx, OccasionInput{Name: "Christmas", Type: "holiday", Date: date})
	require.NoError(t, err)
	assert.Equal(t, "holiday", occasion.Type)

	gift, err := s.AddGift(ctx, GiftInput{RecipientID: person.ID, OccasionID: &occasion.ID, Name: "Scarf", Price: 2599})
	require.NoError(t, err)
	assert.Equal(t, "planned", gift.Status)

	gift, err = s.SetGiftStatus(ctx, gift.ID, "purchased")
	require.NoError(t, err)
	assert.Equal(t, "purchased", gift.Status)

	gifts, err := s.Gifts(ctx, GiftQuery{Status: "purchased"})
	require.NoError(t, err)
	assert.Len(t, gifts, 1)

	_, err = s.AddBudget(ctx, BudgetInput{Name: "Christmas", Amount: 20000, Period: "yearly"})
	require.NoError(t, err)
	budgets, err := s.Budgets(ctx)
	require.NoError(t, err)
	assert.Len(t, budgets, 1)

	_, err = s.AddGift(ctx, GiftInput{RecipientID: "0190b6a2-0000-7000-8000-00000000ffff", Name: "Ghost"})
	assert.True(t, HasCode(err, "INVALID_REFERENCE"), "got %v", err)
	assert.Equal(t, StateAuthenticated, s.State(), "a validation error keeps the session")

	// A second process picks the session up from the token file.
	restored := NewSession(New(ts.URL, ts.Client()), store)
	require.NoError(t, restored.Restore(ctx))
	assert.Equal(t, StateAuthenticated, restored.State())
	people, err := restored.People(ctx)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Mom", people[0].Name)

	// Logging out revokes the token for every holder.
	require.NoError(t, s.Logout(ctx))
	_, err = restored.Occasions(ctx)
	assert.True(t, IsUnauthorized(err), "got %v", err)
	assert.Equal(t, StateUnauthenticated, restored.State())

	_, err = s.Login(ctx, "alice@example.com", "Secret124!")
	assert.True(t, HasCode(err, "INVALID_CREDENTIALS"), "got %v", err)
	assert.Equal(t, StateUnauthenticated, s.State())
}
