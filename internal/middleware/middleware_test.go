package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/famledger/internal/auth"
)

func captureError(got *error) ErrorWriter {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		*got = err
		w.WriteHeader(http.StatusUnauthorized)
	}
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	token, _, err := jwtManager.Generate("Mamma")
	require.NoError(t, err)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetPerson(r.Context())
	})

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"valid token", "Bearer " + token, nil},
		{"lowercase scheme", "bearer " + token, nil},
		{"missing header", "", auth.ErrMissingToken},
		{"wrong scheme", "Basic abc", auth.ErrInvalidToken},
		{"garbage token", "Bearer nope", auth.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			var gotErr error
			h := RequireAuth(jwtManager, captureError(&gotErr))(next)

			req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if tt.wantErr == nil {
				assert.NoError(t, gotErr)
				assert.Equal(t, "Mamma", seen)
				return
			}
			assert.True(t, errors.Is(gotErr, tt.wantErr), "got %v", gotErr)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Empty(t, seen)
		})
	}
}

func TestLoggingRecordsStatusAndPerson(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WithPerson(r.Context(), "Elia")
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/obligations/x", nil))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "status=404")
	assert.Contains(t, out, "person=Elia")
	assert.Contains(t, out, "path=/api/obligations/x")
}
