// Package app wires configuration into the shared components used by the
// server and the worker binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/mmynk/famledger/internal/config"
	"github.com/mmynk/famledger/internal/ledger"
	"github.com/mmynk/famledger/internal/notify"
	"github.com/mmynk/famledger/internal/service"
	"github.com/mmynk/famledger/internal/storage"
	"github.com/mmynk/famledger/internal/storage/memory"
	"github.com/mmynk/famledger/internal/storage/sqlite"
)

const webhookTimeout = 10 * time.Second

// OpenTable opens the configured worksheet backend.
func OpenTable(cfg config.StorageConfig) (storage.Table, error) {
	switch cfg.Driver {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		table, err := sqlite.New(cfg.Path, cfg.Sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to open worksheet: %w", err)
		}
		return table, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// OpenLedger opens the worksheet and writes the header when it is empty.
func OpenLedger(ctx context.Context, cfg config.StorageConfig) (*ledger.Store, storage.Table, error) {
	table, err := OpenTable(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := ledger.New(table)
	if err := store.Init(ctx); err != nil {
		_ = table.Close()
		return nil, nil, fmt.Errorf("failed to initialise ledger: %w", err)
	}
	return store, table, nil
}

// Directory returns the closed sets of people and categories.
func Directory(cfg config.LedgerConfig) service.Directory {
	return service.Directory{People: cfg.People, Categories: cfg.Categories}
}

// NewSender builds the reminder channel selected in configuration.
func NewSender(cfg config.NotifierConfig, logger *slog.Logger) (notify.Sender, error) {
	switch cfg.Channel {
	case "log":
		return notify.LogSender{Logger: logger}, nil
	case "smtp":
		return &notify.SMTPSender{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			From:     cfg.SMTP.From,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		}, nil
	case "webhook":
		return &notify.WebhookSender{
			URL:    cfg.WebhookURL,
			Client: &http.Client{Timeout: webhookTimeout},
		}, nil
	default:
		return nil, fmt.Errorf("unknown notifier channel %q", cfg.Channel)
	}
}

// NewNotifier builds the due-soon notifier over store.
func NewNotifier(cfg *config.Config, store *ledger.Store, logger *slog.Logger) (*notify.Notifier, error) {
	location, err := cfg.Ledger.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone: %w", err)
	}
	sender, err := NewSender(cfg.Notifier, logger)
	if err != nil {
		return nil, err
	}
	return notify.New(store, sender, notify.AddressBook(cfg.Notifier.Addresses), notify.Config{
		Location: location,
		Logger:   logger,
	}), nil
}

// NewRedis returns a client for the run log.
func NewRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisOpts returns the queue connection for asynq.
func RedisOpts(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
