package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/famledger/internal/export"
	"github.com/mmynk/famledger/internal/jobs"
	"github.com/mmynk/famledger/internal/middleware"
	"github.com/mmynk/famledger/internal/models"
	"github.com/mmynk/famledger/internal/money"
	"github.com/mmynk/famledger/internal/service"
)

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}
	session, err := h.auth.Login(r.Context(), req.Person, req.Passphrase)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *handler) directory(w http.ResponseWriter, _ *http.Request) {
	dir := h.ledger.Directory()
	writeJSON(w, http.StatusOK, directoryResponse{People: dir.People, Categories: dir.Categories})
}

func (h *handler) listOpen(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.OpenFilter{
		Person: q.Get("person"),
		Query:  q.Get("q"),
	}
	if raw := q.Get("overdue"); raw != "" {
		overdue, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, h.logger, fmt.Errorf("%w: overdue must be a boolean", errMalformed))
			return
		}
		filter.OverdueOnly = overdue
	}

	obligations, err := h.ledger.ListOpen(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, openResponse{Obligations: toViews(obligations, h.ledger.Today())})
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHistoryFilter(r.URL.Query())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	history, err := h.ledger.History(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Obligations: toViews(history.Obligations, h.ledger.Today()),
		TotalCents:  history.TotalMinor,
		Total:       money.FormatMinor(history.TotalMinor),
		Years:       nonNilYears(history.Years),
	})
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.logger, err)
		return
	}
	o, err := h.ledger.Create(r.Context(), in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.logger.Info("Obligation created", "obligation_id", o.ID, "acting_person", middleware.GetPerson(r.Context()))
	writeJSON(w, http.StatusCreated, toView(o, h.ledger.Today()))
}

func (h *handler) createShared(w http.ResponseWriter, r *http.Request) {
	var in service.SharedInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, h.logger, err)
		return
	}
	created, err := h.ledger.CreateShared(r.Context(), in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.logger.Info("Shared expense recorded", "obligations", len(created), "acting_person", middleware.GetPerson(r.Context()))
	writeJSON(w, http.StatusCreated, openResponse{Obligations: toViews(created, h.ledger.Today())})
}

func (h *handler) settle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	o, err := h.ledger.Settle(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.logger.Info("Obligation settled", "obligation_id", id, "acting_person", middleware.GetPerson(r.Context()))
	writeJSON(w, http.StatusOK, toView(o, h.ledger.Today()))
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ledger.Delete(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	h.logger.Info("Obligation deleted", "obligation_id", id, "acting_person", middleware.GetPerson(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledger.Summary(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary, OpenTotal: money.FormatMinor(summary.OpenTotalMinor)})
}

func (h *handler) balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.ledger.Balances(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalancesResponse(balances))
}

func (h *handler) exportHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHistoryFilter(r.URL.Query())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	history, err := h.ledger.History(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteHistoryCSV(w, history.Obligations); err != nil {
		h.logger.Error("Failed to write CSV export", "error", err)
	}
}

func (h *handler) runNotifier(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil {
		writeProblem(w, ProblemDetail{Title: "Not Found", Status: http.StatusNotFound, Detail: "notifier is not configured"})
		return
	}
	threshold := h.threshold
	if raw := r.URL.Query().Get("threshold_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, h.logger, fmt.Errorf("%w: threshold_days must be a non-negative integer", errMalformed))
			return
		}
		threshold = n
	}

	res, err := h.notifier.Scan(r.Context(), threshold)
	resp := notifierRunResponse{ThresholdDays: threshold, Result: res}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

func (h *handler) lastRun(w http.ResponseWriter, r *http.Request) {
	if h.runLog == nil {
		writeProblem(w, ProblemDetail{Title: "Not Found", Status: http.StatusNotFound, Detail: "no notifier run recorded"})
		return
	}
	run, ok, err := h.runLog.Last(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if !ok {
		writeProblem(w, ProblemDetail{Title: "Not Found", Status: http.StatusNotFound, Detail: "no notifier run recorded"})
		return
	}
	writeJSON(w, http.StatusOK, lastRunResponse{Run: run})
}

func (h *handler) recentRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, h.logger, fmt.Errorf("%w: limit must be a positive integer", errMalformed))
			return
		}
		limit = min(n, maxRunsLimit)
	}
	runs := []jobs.Run{}
	if h.runLog != nil {
		var err error
		if runs, err = h.runLog.Recent(r.Context(), limit); err != nil {
			respondError(w, h.logger, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, runsResponse{Runs: runs})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errMalformed)
		}
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return nil
}

func parseHistoryFilter(q url.Values) (service.HistoryFilter, error) {
	filter := service.HistoryFilter{
		Person:   q.Get("person"),
		Category: q.Get("category"),
		Query:    q.Get("q"),
	}
	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 {
			return filter, fmt.Errorf("%w: year must be a positive integer", errMalformed)
		}
		filter.Year = year
	}
	var err error
	if filter.From, err = parseDateParam(q, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = parseDateParam(q, "to"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseDateParam(q url.Values, name string) (time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", errMalformed, name)
	}
	return t, nil
}

func nonNilYears(years []int) []int {
	if years == nil {
		return []int{}
	}
	return years
}
