package auth

import (
	"context"
)

// Authenticator defines the interface for authentication implementations.
// The board has no per-user accounts: a caller proves membership of the
// family and names the person they act as.
type Authenticator interface {
	// Authenticate verifies the credential and returns the acting person.
	Authenticate(ctx context.Context, person, credential string) (string, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
