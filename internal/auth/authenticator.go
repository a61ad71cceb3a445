// Package auth turns credentials into signed session tokens and tokens back
// into caller identities.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/logger"
	"giftwise/internal/models"
)

// DefaultIssuer is the iss claim of tokens minted by this service.
const DefaultIssuer = "giftwise-api"

// DefaultTTL is the validity window of a session token.
const DefaultTTL = 24 * time.Hour

// MinSecretBytes is the shortest signing secret New accepts.
const MinSecretBytes = 32

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// CredentialStore is the subset of the user store the authenticator needs.
type CredentialStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// Options configures an Authenticator. Secret is required.
type Options struct {
	Secret     []byte
	TTL        time.Duration
	BcryptCost int
	Issuer     string
	// Now overrides the clock; tests use it to move across the expiry edge.
	Now func() time.Time
}

// Authenticator issues and verifies session tokens.
type Authenticator struct {
	store     CredentialStore
	secret    []byte
	ttl       time.Duration
	cost      int
	issuer    string
	now       func() time.Time
	parser    *jwt.Parser
	dummyHash []byte
}

// New validates opts and builds an Authenticator.
func New(store CredentialStore, opts Options) (*Authenticator, error) {
	if len(opts.Secret) < MinSecretBytes {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", MinSecretBytes)
	}
	if opts.TTL == 0 {
		opts.TTL = DefaultTTL
	}
	if opts.TTL < 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %v", opts.TTL)
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Issuer == "" {
		opts.Issuer = DefaultIssuer
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	// Hashed once so that unknown emails cost as much as wrong passwords.
	filler := make([]byte, 32)
	if _, err := rand.Read(filler); err != nil {
		return nil, fmt.Errorf("generating dummy password: %w", err)
	}
	dummyHash, err := bcrypt.GenerateFromPassword(filler[:], opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing dummy password: %w", err)
	}

	a := &Authenticator{
		store:     store,
		secret:    opts.Secret,
		ttl:       opts.TTL,
		cost:      opts.BcryptCost,
		issuer:    opts.Issuer,
		now:       opts.Now,
		dummyHash: dummyHash,
	}
	a.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(opts.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(a.now),
	)
	return a, nil
}

// TTL returns the validity window of issued tokens.
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// NormalizeEmail is the canonical form used for every email lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns it with a fresh token, as though
// the user had just logged in.
func (a *Authenticator) Register(ctx context.Context, name, email, password string) (*models.User, *Token, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}
	if len(password) > MaxPasswordBytes {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at most 72 bytes")
	}

	if _, err := a.store.GetUserByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("hashing password: %w", err))
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Preferences:  models.DefaultPreferences(),
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, nil, apperrors.ErrEmailTaken
		}
		return nil, nil, err
	}

	token, err := a.IssueToken(user.ID, user.Email)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Login checks the password and returns the user with a fresh token. An
// unknown email and a wrong password produce the same error.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*models.User, *Token, error) {
	user, err := a.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	now := a.now()
	if err := a.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		logger.Get().Warnw("failed to record last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	token, err := a.IssueToken(user.ID, user.Email)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Authenticate verifies a token and loads the user it names. Tokens for
// users that no longer exist fail with ErrUserNotFound.
func (a *Authenticator) Authenticate(ctx context.Context, tokenString string) (*models.User, *Claims, error) {
	claims, err := a.VerifyToken(tokenString)
	if err != nil {
		return nil, nil, err
	}
	user, err := a.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}
