package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassphraseAuthenticator(t *testing.T) {
	hash, err := HashPassphrase("lavagna-di-casa")
	require.NoError(t, err)

	a := NewPassphraseAuthenticator(hash, []string{"Elia", "Mamma"})
	ctx := context.Background()

	person, err := a.Authenticate(ctx, "Elia", "lavagna-di-casa")
	require.NoError(t, err)
	assert.Equal(t, "Elia", person)

	_, err = a.Authenticate(ctx, "Elia", "wrong-passphrase")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = a.Authenticate(ctx, "Zio", "lavagna-di-casa")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestHashPassphraseRejectsShort(t *testing.T) {
	_, err := HashPassphrase("short")
	assert.True(t, errors.Is(err, ErrWeakPassphrase))
	assert.Error(t, NewPassphraseAuthenticator("", nil).ValidateCredential("1234567"))
	assert.NoError(t, NewPassphraseAuthenticator("", nil).ValidateCredential("12345678"))
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, expires, err := m.Generate("Mamma")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "Mamma", claims.Person)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, _, err := m.Generate("Mamma")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Validate(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	other := NewJWTManager("another-secret", time.Hour)
	_, err = other.Validate(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = m.Validate("not-a-token")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTRejectsWrongIssuerAndAlgorithm(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	now := time.Now()

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Person: "Mamma",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Person: "Mamma",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err = hs512.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noPerson := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err = noPerson.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
