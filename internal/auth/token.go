package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/uuid"
)

// Claims is the payload of a session token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Token is a signed session credential together with its validity window.
type Token struct {
	Value     string    `json:"token"`
	ID        string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken signs a token for the user that is valid on
// [IssuedAt, IssuedAt+TTL). IssuedAt is truncated to the second because JWT
// timestamps carry whole seconds only.
func (a *Authenticator) IssueToken(userID, email string) (*Token, error) {
	issuedAt := a.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(a.ttl)
	jti := uuid.New()

	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    a.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("signing token: %w", err))
	}

	return &Token{Value: signed, ID: jti, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// VerifyToken checks the signature, issuer and validity window of a token and
// returns its claims. It does not consult the credential store or the
// revocation list.
func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := a.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}

	// jwt treats exp as inclusive; the window here is half-open.
	if !a.now().Before(claims.ExpiresAt.Time) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, jwt.ErrTokenExpired)
	}
	if claims.UserID == "" || claims.Subject != claims.UserID || claims.ID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidToken, "Invalid token subject")
	}

	return claims, nil
}
