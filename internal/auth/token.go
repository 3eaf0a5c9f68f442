package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when an access token is malformed, carries a
// bad signature, or does not match a known session.
var ErrInvalidToken = errors.New("invalid access token")

// ErrTokenExpired is returned when an access token is past its expiry.
var ErrTokenExpired = errors.New("access token expired")

// Claims are the JWT claims carried by an access token. Subject is the
// account id.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Email     string `json:"email,omitempty"`
}

// TokenIssuer signs and parses HS256 access tokens.
type TokenIssuer struct {
	key    []byte
	issuer string
}

// NewTokenIssuer creates a TokenIssuer for the given secret and issuer.
func NewTokenIssuer(secret, issuer string) *TokenIssuer {
	return &TokenIssuer{key: []byte(secret), issuer: issuer}
}

// Issue mints a token for the session record.
func (t *TokenIssuer) Issue(rec *SessionRecord) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   rec.AccountID.String(),
			ID:        rec.ID.String(),
			IssuedAt:  jwt.NewNumericDate(rec.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(rec.ExpiresAt),
		},
		SessionID: rec.ID.String(),
		Email:     rec.Email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature, issuer and expiry of a token.
func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.key, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
