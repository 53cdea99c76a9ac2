package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/famledger/internal/config"
	"github.com/mmynk/famledger/internal/notify"
)

func TestOpenLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, table, err := OpenLedger(ctx, config.StorageConfig{Driver: "memory"})
		require.NoError(t, err)
		defer table.Close()

		header, err := table.Header(ctx)
		require.NoError(t, err)
		assert.Contains(t, header, "id")

		all, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.db")
		_, table, err := OpenLedger(ctx, config.StorageConfig{Driver: "sqlite", Path: path, Sheet: "family_ledger"})
		require.NoError(t, err)
		require.NoError(t, table.Close())
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, _, err := OpenLedger(ctx, config.StorageConfig{Driver: "sheets"})
		assert.ErrorContains(t, err, "unknown storage driver")
	})
}

func TestNewSender(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		channel string
		want    notify.Sender
	}{
		{"log", notify.LogSender{Logger: logger}},
		{"smtp", &notify.SMTPSender{Host: "mail.local", Port: 587}},
		{"webhook", &notify.WebhookSender{}},
	}
	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			sender, err := NewSender(config.NotifierConfig{
				Channel:    tt.channel,
				WebhookURL: "http://hooks.local/reminders",
				SMTP:       config.SMTPConfig{Host: "mail.local", Port: 587},
			}, logger)
			require.NoError(t, err)
			assert.IsType(t, tt.want, sender)
		})
	}

	_, err := NewSender(config.NotifierConfig{Channel: "pigeon"}, logger)
	assert.Error(t, err)
}

func TestNewNotifierRejectsBadTimezone(t *testing.T) {
	cfg := &config.Config{
		Ledger:   config.LedgerConfig{Timezone: "Mars/Olympus"},
		Notifier: config.NotifierConfig{Channel: "log"},
	}
	_, err := NewNotifier(cfg, nil, slog.Default())
	assert.Error(t, err)
}

func TestRedisOpts(t *testing.T) {
	cfg := config.RedisConfig{Addr: "redis:6379", Password: "secret", DB: 2}
	opts := RedisOpts(cfg)
	assert.Equal(t, "redis:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	client := NewRedis(cfg)
	defer client.Close()
	assert.Equal(t, "redis:6379", client.Options().Addr)
}
