package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/residentdesk/residentdesk/internal/auth"
)

func sampleRecord(expiresAt time.Time) *auth.SessionRecord {
	return &auth.SessionRecord{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Email:     "a@b.com",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, testIssuer)
	rec := sampleRecord(time.Now().Add(time.Hour))

	token, err := issuer.Issue(rec)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, rec.AccountID.String(), claims.Subject)
	assert.Equal(t, rec.ID.String(), claims.SessionID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, testIssuer, claims.Issuer)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, testIssuer)
	token, err := issuer.Issue(sampleRecord(time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, err := auth.NewTokenIssuer("other-secret", testIssuer).Issue(sampleRecord(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer(testSecret, testIssuer).Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_WrongIssuer(t *testing.T) {
	token, err := auth.NewTokenIssuer(testSecret, "someone-else").Issue(sampleRecord(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer(testSecret, testIssuer).Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		SessionID: uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer(testSecret, testIssuer).Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
