package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid person or passphrase")
	ErrWeakPassphrase     = errors.New("passphrase must be at least 8 characters")
)

// PassphraseAuthenticator checks a single family passphrase stored as a bcrypt hash.
type PassphraseAuthenticator struct {
	hash   []byte
	people map[string]bool
}

// Ensure PassphraseAuthenticator implements Authenticator
var _ Authenticator = (*PassphraseAuthenticator)(nil)

// NewPassphraseAuthenticator creates an authenticator for the given bcrypt hash.
// Only names in people may log in.
func NewPassphraseAuthenticator(hash string, people []string) *PassphraseAuthenticator {
	set := make(map[string]bool, len(people))
	for _, p := range people {
		set[p] = true
	}
	return &PassphraseAuthenticator{hash: []byte(hash), people: set}
}

// ValidateCredential checks if the passphrase meets minimum requirements.
func (a *PassphraseAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassphrase
	}
	return nil
}

// Authenticate compares the passphrase against the stored hash.
func (a *PassphraseAuthenticator) Authenticate(ctx context.Context, person, credential string) (string, error) {
	if !a.people[person] {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(credential)); err != nil {
		return "", ErrInvalidCredentials
	}
	return person, nil
}

// HashPassphrase returns the bcrypt hash to put in configuration.
func HashPassphrase(passphrase string) (string, error) {
	if len(passphrase) < 8 {
		return "", ErrWeakPassphrase
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passphrase: %w", err)
	}
	return string(hashed), nil
}
