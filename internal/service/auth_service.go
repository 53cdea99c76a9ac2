package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/famledger/internal/auth"
)

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	Person    string    `json:"person"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService exchanges the family passphrase for a signed session token.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Login authenticates person with passphrase and returns a session token.
func (s *AuthService) Login(ctx context.Context, person, passphrase string) (Session, error) {
	person = strings.TrimSpace(person)
	s.logger.Info("Login request", "person", person)

	if person == "" || passphrase == "" {
		return Session{}, auth.ErrInvalidCredentials
	}

	acting, err := s.authenticator.Authenticate(ctx, person, passphrase)
	if err != nil {
		s.logger.Warn("Login failed", "person", person, "error", err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("failed to authenticate: %w", err)
	}

	token, expires, err := s.jwtManager.Generate(acting)
	if err != nil {
		s.logger.Error("Failed to generate token", "person", acting, "error", err)
		return Session{}, err
	}

	s.logger.Info("Login succeeded", "person", acting)
	return Session{Token: token, Person: acting, ExpiresAt: expires}, nil
}
