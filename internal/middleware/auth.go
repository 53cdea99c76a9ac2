package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmynk/famledger/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// PersonKey is the context key for the authenticated acting person.
	PersonKey contextKey = "person"
	// personSinkKey holds a *string that Logging reads after the request.
	personSinkKey contextKey = "person_sink"
)

// GetPerson extracts the acting person from the context.
// Returns empty string if not found.
func GetPerson(ctx context.Context) string {
	person, _ := ctx.Value(PersonKey).(string)
	return person
}

// WithPerson returns a copy of ctx carrying person.
func WithPerson(ctx context.Context, person string) context.Context {
	if sink, ok := ctx.Value(personSinkKey).(*string); ok {
		*sink = person
	}
	return context.WithValue(ctx, PersonKey, person)
}

func withPersonSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, personSinkKey, sink)
}

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireAuth returns a middleware that validates bearer JWT tokens.
// It extracts the token from the Authorization header, validates it, and adds
// the acting person to the request context.
func RequireAuth(jwtManager *auth.JWTManager, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				onError(w, r, auth.ErrMissingToken)
				return
			}

			// Parse Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				onError(w, r, auth.ErrInvalidToken)
				return
			}

			claims, err := jwtManager.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPerson(r.Context(), claims.Person)))
		})
	}
}
