package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/services"
	"giftwise/internal/testutil"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// fakeClock is a settable clock shared by the authenticator under test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestAuthenticator(t *testing.T, clock *fakeClock) *Authenticator {
	t.Helper()
	db := testutil.SetupTestDB(t)
	opts := Options{Secret: testSecret, TTL: time.Hour, BcryptCost: bcrypt.MinCost}
	if clock != nil {
		opts.Now = clock.Now
	}
	a, err := New(services.NewUserService(db), opts)
	if err != nil {
		t.Fatalf("failed to build authenticator: %v", err)
	}
	return a
}

func TestNew(t *testing.T) {
	t.Run("short_secret", func(t *testing.T) {
		_, err := New(nil, Options{Secret: []byte("short")})
		if err == nil {
			t.Fatal("expected error for short secret")
		}
	})

	t.Run("negative_ttl", func(t *testing.T) {
		_, err := New(nil, Options{Secret: testSecret, TTL: -time.Minute, BcryptCost: bcrypt.MinCost})
		if err == nil {
			t.Fatal("expected error for negative ttl")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		a, err := New(nil, Options{Secret: testSecret, BcryptCost: bcrypt.MinCost})
		testutil.AssertNoError(t, err)
		if a.TTL() != DefaultTTL {
			t.Errorf("expected default ttl %v, got %v", DefaultTTL, a.TTL())
		}
	})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("login_after_register", func(t *testing.T) {
		a := newTestAuthenticator(t, nil)

		user, token, err := a.Register(ctx, "Alice", "alice@x.io", "Secret123!")
		testutil.AssertNoError(t, err)
		if user.PasswordHash == "Secret123!" || user.PasswordHash == "" {
			t.Fatal("password must be stored hashed")
		}
		if token.Value == "" {
			t.Fatal("expected a token on register")
		}

		loggedIn, loginToken, err := a.Login(ctx, "ALICE@x.io", "Secret123!")
		testutil.AssertNoError(t, err)
		if loggedIn.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, loggedIn.ID)
		}
		if loggedIn.LastLoginAt == nil {
			t.Error("expected last login to be recorded")
		}

		claims, err := a.VerifyToken(loginToken.Value)
		testutil.AssertNoError(t, err)
		if claims.UserID != user.ID || claims.Email != "alice@x.io" {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("duplicate_email_any_case", func(t *testing.T) {
		a := newTestAuthenticator(t, nil)

		_, _, err := a.Register(ctx, "Alice", "alice@x.io", "Secret123!")
		testutil.AssertNoError(t, err)
		_, _, err = a.Register(ctx, "Other", " Alice@X.io", "different")
		testutil.AssertAppError(t, err, "EMAIL_TAKEN")
	})

	t.Run("missing_fields", func(t *testing.T) {
		a := newTestAuthenticator(t, nil)

		_, _, err := a.Register(ctx, "Alice", "", "Secret123!")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, _, err = a.Register(ctx, "Alice", "alice@x.io", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("password_over_72_bytes", func(t *testing.T) {
		a := newTestAuthenticator(t, nil)

		// 40 characters, 80 bytes.
		_, _, err := a.Register(ctx, "Alice", "alice@x.io", strings.Repeat("é", 40))
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, _, err = a.Register(ctx, "Alice", "alice@x.io", strings.Repeat("é", 36))
		testutil.AssertNoError(t, err)
	})

	t.Run("wrong_password_and_unknown_email_look_alike", func(t *testing.T) {
		a := newTestAuthenticator(t, nil)
		_, _, err := a.Register(ctx, "Alice", "alice@x.io", "Secret123!")
		testutil.AssertNoError(t, err)

		_, _, wrongPassword := a.Login(ctx, "alice@x.io", "Secret124!")
		_, _, unknownEmail := a.Login(ctx, "nobody@x.io", "Secret123!")

		testutil.AssertAppError(t, wrongPassword, "INVALID_CREDENTIALS")
		testutil.AssertAppError(t, unknownEmail, "INVALID_CREDENTIALS")
		if wrongPassword.Error() != unknownEmail.Error() {
			t.Errorf("messages differ: %q vs %q", wrongPassword.Error(), unknownEmail.Error())
		}
	})
}

func TestTokenExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	a := newTestAuthenticator(t, clock)

	token, err := a.IssueToken("0190b6a2-0000-7000-8000-000000000001", "a@x.io")
	testutil.AssertNoError(t, err)
	if !token.ExpiresAt.Equal(token.IssuedAt.Add(time.Hour)) {
		t.Fatalf("expected a one hour window, got %v..%v", token.IssuedAt, token.ExpiresAt)
	}

	clock.Set(token.ExpiresAt.Add(-time.Second))
	_, err = a.VerifyToken(token.Value)
	testutil.AssertNoError(t, err)

	clock.Set(token.ExpiresAt)
	_, err = a.VerifyToken(token.Value)
	testutil.AssertAppError(t, err, "INVALID_TOKEN")

	clock.Set(token.ExpiresAt.Add(time.Hour))
	_, err = a.VerifyToken(token.Value)
	testutil.AssertAppError(t, err, "INVALID_TOKEN")
}

func TestVerifyTokenRejects(t *testing.T) {
	a := newTestAuthenticator(t, nil)
	token, err := a.IssueToken("0190b6a2-0000-7000-8000-000000000001", "a@x.io")
	testutil.AssertNoError(t, err)

	other, err := New(nil, Options{Secret: []byte("ffffffffffffffffffffffffffffffff"), BcryptCost: bcrypt.MinCost})
	testutil.AssertNoError(t, err)
	foreign, err := other.IssueToken("0190b6a2-0000-7000-8000-000000000001", "a@x.io")
	testutil.AssertNoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u",
			ID:        "j",
			Issuer:    DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	testutil.AssertNoError(t, err)

	parts := strings.Split(token.Value, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered_signature", tampered},
		{"other_secret", foreign.Value},
		{"alg_none", noneToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.VerifyToken(tt.token)
			testutil.AssertAppError(t, err, "INVALID_TOKEN")
		})
	}
}

func TestIssueTokenUniqueIDs(t *testing.T) {
	a := newTestAuthenticator(t, nil)

	first, err := a.IssueToken("0190b6a2-0000-7000-8000-000000000001", "a@x.io")
	testutil.AssertNoError(t, err)
	second, err := a.IssueToken("0190b6a2-0000-7000-8000-000000000001", "a@x.io")
	testutil.AssertNoError(t, err)

	if first.ID == second.ID {
		t.Error("expected distinct token ids")
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := newTestAuthenticator(t, nil)

	user, token, err := a.Register(ctx, "Bob", "bob@x.io", "hunter22")
	testutil.AssertNoError(t, err)

	got, claims, err := a.Authenticate(ctx, token.Value)
	testutil.AssertNoError(t, err)
	if got.ID != user.ID || claims.ID != token.ID {
		t.Errorf("unexpected identity %s / %s", got.ID, claims.ID)
	}

	ghost, err := a.IssueToken("0190b6a2-0000-7000-8000-00000000dead", "ghost@x.io")
	testutil.AssertNoError(t, err)
	_, _, err = a.Authenticate(ctx, ghost.Value)
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("expected USER_NOT_FOUND, got %v", err)
	}
}
