package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/famledger/internal/calculator"
	"github.com/mmynk/famledger/internal/ledger"
	"github.com/mmynk/famledger/internal/models"
	"github.com/mmynk/famledger/internal/money"
	"github.com/mmynk/famledger/internal/storage"
)

// LedgerService owns the obligation lifecycle: create, settle, delete and the
// board queries. All writes go through the ledger store.
type LedgerService struct {
	store    *ledger.Store
	dir      Directory
	validate *validator.Validate
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone used for "today" and stored timestamps.
func WithLocation(loc *time.Location) Option {
	return func(s *LedgerService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *LedgerService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewLedgerService creates a LedgerService over store.
func NewLedgerService(store *ledger.Store, dir Directory, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:    store,
		dir:      dir,
		validate: newValidator(dir),
		now:      time.Now,
		location: time.Local,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Directory returns the configured people and categories.
func (s *LedgerService) Directory() Directory {
	return s.dir
}

// Now returns the current time in the service location.
func (s *LedgerService) Now() time.Time {
	return s.now().In(s.location)
}

// Today returns the current calendar date in the service location.
func (s *LedgerService) Today() time.Time {
	n := s.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateInput is a single debt entered on the board.
type CreateInput struct {
	Debtor      string          `json:"debtor"`
	Creditor    string          `json:"creditor"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	DueDate     string          `json:"due_date"`
}

type createRecord struct {
	Debtor      string `json:"debtor" validate:"required,person"`
	Creditor    string `json:"creditor" validate:"required,person,nefield=Debtor"`
	AmountMinor int64  `json:"amount" validate:"gt=0"`
	Description string `json:"description" validate:"required,max=200"`
	Category    string `json:"category" validate:"required,category"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// Create validates in and appends a new OPEN obligation. Nothing is written
// when validation fails.
func (s *LedgerService) Create(ctx context.Context, in CreateInput) (models.Obligation, error) {
	amountMinor, err := money.ToMinorUnits(in.Amount)
	if err != nil {
		return models.Obligation{}, amountTooLarge("amount")
	}
	rec := createRecord{
		Debtor:      strings.TrimSpace(in.Debtor),
		Creditor:    strings.TrimSpace(in.Creditor),
		AmountMinor: amountMinor,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		DueDate:     strings.TrimSpace(in.DueDate),
	}
	if err := s.validate.Struct(rec); err != nil {
		s.logger.Debug("Create rejected", "error", err)
		return models.Obligation{}, toValidationError(err)
	}

	o := models.NewObligation(rec.Debtor, rec.Creditor, rec.AmountMinor, rec.Description, rec.Category, rec.DueDate, s.Now())
	if err := s.store.Append(ctx, o); err != nil {
		s.logger.Error("Create failed", "obligation_id", o.ID, "error", err)
		return models.Obligation{}, fmt.Errorf("failed to create obligation: %w", err)
	}

	s.logger.Info("Obligation created",
		"obligation_id", o.ID,
		"debtor", o.Debtor,
		"creditor", o.Creditor,
		"amount_cents", o.AmountMinor,
	)
	return o, nil
}

// SharedInput is one expense paid by Creditor and shared evenly by
// Participants. The creditor may be a participant; no obligation is recorded
// for their own share.
type SharedInput struct {
	Creditor     string          `json:"creditor"`
	Participants []string        `json:"participants"`
	Total        decimal.Decimal `json:"total"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	DueDate      string          `json:"due_date"`
}

type sharedRecord struct {
	Creditor     string   `json:"creditor" validate:"required,person"`
	Participants []string `json:"participants" validate:"required,min=1,unique,dive,required,person"`
	TotalMinor   int64    `json:"total" validate:"gt=0"`
	Description  string   `json:"description" validate:"required,max=200"`
	Category     string   `json:"category" validate:"required,category"`
	DueDate      string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// CreateShared splits a shared expense and appends one OPEN obligation per
// participant other than the creditor. Rows appended before a store failure
// are returned along with the error.
func (s *LedgerService) CreateShared(ctx context.Context, in SharedInput) ([]models.Obligation, error) {
	totalMinor, err := money.ToMinorUnits(in.Total)
	if err != nil {
		return nil, amountTooLarge("total")
	}
	rec := sharedRecord{
		Creditor:     strings.TrimSpace(in.Creditor),
		Participants: make([]string, len(in.Participants)),
		TotalMinor:   totalMinor,
		Description:  strings.TrimSpace(in.Description),
		Category:     strings.TrimSpace(in.Category),
		DueDate:      strings.TrimSpace(in.DueDate),
	}
	for i, p := range in.Participants {
		rec.Participants[i] = strings.TrimSpace(p)
	}
	if err := s.validate.Struct(rec); err != nil {
		return nil, toValidationError(err)
	}

	shares, err := calculator.SplitEvenly(rec.TotalMinor, rec.Participants)
	if err != nil {
		return nil, &models.ValidationError{Fields: []models.FieldError{{Field: "participants", Message: err.Error()}}}
	}

	ve := &models.ValidationError{}
	debtorShares := make([]calculator.Share, 0, len(shares))
	for _, share := range shares {
		if share.Person == rec.Creditor {
			continue
		}
		if share.AmountMinor <= 0 {
			ve.Add("total", "total is too small to split between all participants")
			break
		}
		debtorShares = append(debtorShares, share)
	}
	if len(debtorShares) == 0 && len(ve.Fields) == 0 {
		ve.Add("participants", "participants must include someone other than the creditor")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	now := s.Now()
	created := make([]models.Obligation, 0, len(debtorShares))
	for _, share := range debtorShares {
		o := models.NewObligation(share.Person, rec.Creditor, share.AmountMinor, rec.Description, rec.Category, rec.DueDate, now)
		if err := s.store.Append(ctx, o); err != nil {
			s.logger.Error("CreateShared failed", "appended", len(created), "error", err)
			return created, fmt.Errorf("failed to create obligation for %s: %w", share.Person, err)
		}
		created = append(created, o)
	}

	s.logger.Info("Shared expense recorded",
		"creditor", rec.Creditor,
		"obligations", len(created),
		"total_cents", rec.TotalMinor,
	)
	return created, nil
}

// Settle marks the obligation PAID with the current time in one multi-field
// write. Settling a PAID obligation returns models.ErrAlreadySettled.
func (s *LedgerService) Settle(ctx context.Context, id string) (models.Obligation, error) {
	position, o, err := s.resolve(ctx, id)
	if err != nil {
		return models.Obligation{}, err
	}
	if o.IsPaid() {
		return models.Obligation{}, models.ErrAlreadySettled
	}

	o.Status = models.StatusPaid
	o.PaidAt = models.FormatTimestamp(s.Now())
	err = s.store.UpdateFields(ctx, position, map[string]string{
		ledger.ColStatus: string(o.Status),
		ledger.ColPaidAt: o.PaidAt,
	})
	if err != nil {
		s.logger.Error("Settle failed", "obligation_id", id, "error", err)
		return models.Obligation{}, fmt.Errorf("failed to settle obligation: %w", err)
	}

	s.logger.Info("Obligation settled", "obligation_id", id, "paid_at", o.PaidAt)
	return o, nil
}

// Delete removes an OPEN obligation entered by mistake. PAID obligations are
// history and return models.ErrNotDeletable.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	position, o, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}
	if o.IsPaid() {
		return models.ErrNotDeletable
	}
	if err := s.store.DeleteRow(ctx, position); err != nil {
		s.logger.Error("Delete failed", "obligation_id", id, "error", err)
		return fmt.Errorf("failed to delete obligation: %w", err)
	}

	s.logger.Info("Obligation deleted", "obligation_id", id)
	return nil
}

// resolve finds id and reads its row right before a write. A row that no
// longer carries id by the time it is read counts as not found.
func (s *LedgerService) resolve(ctx context.Context, id string) (int, models.Obligation, error) {
	position, err := s.store.FindRowPosition(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		s.logger.Info("Obligation not found", "obligation_id", id)
		return 0, models.Obligation{}, err
	}
	if err != nil {
		return 0, models.Obligation{}, fmt.Errorf("failed to find obligation: %w", err)
	}
	o, err := s.store.ReadAt(ctx, position)
	if errors.Is(err, storage.ErrRowOutOfRange) {
		return 0, models.Obligation{}, models.ErrNotFound
	}
	if err != nil {
		return 0, models.Obligation{}, fmt.Errorf("failed to read obligation: %w", err)
	}
	if o.ID != id {
		return 0, models.Obligation{}, models.ErrNotFound
	}
	return position, o, nil
}
