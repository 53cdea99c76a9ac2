package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/famledger/internal/auth"
	"github.com/mmynk/famledger/internal/models"
)

// errMalformed marks a request body or query that could not be decoded.
var errMalformed = errors.New("malformed request")

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string              `json:"type,omitempty"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors []models.FieldError `json:"errors,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeProblem sends an RFC7807 problem details response.
func writeProblem(w http.ResponseWriter, p ProblemDetail) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// respondError maps domain errors to HTTP responses. Backend failures are
// always a 5xx, never an empty result.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, ProblemDetail{Title: "Validation Failed", Status: http.StatusBadRequest, Detail: ve.Error(), Errors: ve.Fields})
	case errors.Is(err, models.ErrValidation), errors.Is(err, errMalformed):
		writeProblem(w, ProblemDetail{Title: "Validation Failed", Status: http.StatusBadRequest, Detail: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		writeProblem(w, ProblemDetail{Title: "Not Found", Status: http.StatusNotFound, Detail: "obligation not found, it may have been removed meanwhile"})
	case errors.Is(err, models.ErrAlreadySettled), errors.Is(err, models.ErrNotDeletable):
		writeProblem(w, ProblemDetail{Title: "Conflict", Status: http.StatusConflict, Detail: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		w.Header().Set("WWW-Authenticate", `Bearer realm="famledger"`)
		writeProblem(w, ProblemDetail{Title: "Unauthorized", Status: http.StatusUnauthorized, Detail: unwrapAuth(err).Error()})
	default:
		logger.Error("Request failed", "error", err)
		writeProblem(w, ProblemDetail{Title: "Internal Error", Status: http.StatusInternalServerError, Detail: "the ledger is unavailable, try again later"})
	}
}

// unwrapAuth hides token parser details from clients.
func unwrapAuth(err error) error {
	for _, sentinel := range []error{auth.ErrInvalidCredentials, auth.ErrMissingToken, auth.ErrInvalidToken} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return err
}
