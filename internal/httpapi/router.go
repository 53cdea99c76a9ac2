// Package httpapi exposes the family board as a JSON API over chi.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/mmynk/famledger/internal/auth"
	"github.com/mmynk/famledger/internal/jobs"
	"github.com/mmynk/famledger/internal/middleware"
	"github.com/mmynk/famledger/internal/notify"
	"github.com/mmynk/famledger/internal/observability"
	"github.com/mmynk/famledger/internal/service"
)

const (
	maxBodyBytes     = 1 << 20
	defaultRateLimit = 120
	defaultRunsLimit = 10
	maxRunsLimit     = 50
)

// NotifierRunner triggers a due-soon scan. *jobs.DueSoonJob implements it.
type NotifierRunner interface {
	Scan(ctx context.Context, threshold int) (notify.Result, error)
}

// RunReader returns recorded scans. *jobs.RunLog implements it.
type RunReader interface {
	Last(ctx context.Context) (jobs.Run, bool, error)
	Recent(ctx context.Context, n int) ([]jobs.Run, error)
}

// Deps wires the router. Auth and JWT are both nil when login is disabled.
type Deps struct {
	Ledger           *service.LedgerService
	Auth             *service.AuthService
	JWT              *auth.JWTManager
	Notifier         NotifierRunner
	RunLog           RunReader
	Metrics          *observability.Metrics
	DefaultThreshold int
	RateLimit        int
	Logger           *slog.Logger
}

type handler struct {
	ledger    *service.LedgerService
	auth      *service.AuthService
	notifier  NotifierRunner
	runLog    RunReader
	threshold int
	logger    *slog.Logger
}

// NewRouter builds the HTTP handler for the board API.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := d.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	h := &handler{
		ledger:    d.Ledger,
		auth:      d.Auth,
		notifier:  d.Notifier,
		runLog:    d.RunLog,
		threshold: d.DefaultThreshold,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger))
	r.Use(d.Metrics.Middleware)

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(limit, time.Minute))

		authEnabled := d.Auth != nil && d.JWT != nil
		if authEnabled {
			r.Post("/login", h.login)
		}

		r.Group(func(r chi.Router) {
			if authEnabled {
				r.Use(middleware.RequireAuth(d.JWT, h.authError))
			}

			r.Get("/directory", h.directory)
			r.Route("/obligations", func(r chi.Router) {
				r.Get("/open", h.listOpen)
				r.Get("/history", h.history)
				r.Post("/", h.create)
				r.Post("/shared", h.createShared)
				r.Post("/{id}/settle", h.settle)
				r.Delete("/{id}", h.delete)
			})
			r.Get("/summary", h.summary)
			r.Get("/balances", h.balances)
			r.Get("/export/history.csv", h.exportHistory)
			r.Post("/notifier/run", h.runNotifier)
			r.Get("/notifier/last-run", h.lastRun)
			r.Get("/notifier/runs", h.recentRuns)
		})
	})

	return r
}

func (h *handler) authError(w http.ResponseWriter, _ *http.Request, err error) {
	respondError(w, h.logger, err)
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
