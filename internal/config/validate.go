package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Ledger.validate(); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	if err := c.Notifier.validate(c.Ledger.People); err != nil {
		return fmt.Errorf("notifier: %w", err)
	}
	if c.Auth.Enabled() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters when a passphrase is set (got %d)", len(c.Auth.JWTSecret))
	}
	return nil
}

func (l *LogConfig) validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", l.Level)
	}
	switch l.Format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unknown format %q (want pretty or json)", l.Format)
	}
	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Driver {
	case "sqlite":
		if s.Path == "" {
			return fmt.Errorf("path is required for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown driver %q (want sqlite or memory)", s.Driver)
	}
	if s.Sheet == "" {
		return fmt.Errorf("sheet must not be empty")
	}
	return nil
}

func (l *LedgerConfig) validate() error {
	l.People = trimAll(l.People)
	l.Categories = trimAll(l.Categories)
	if len(l.People) < 2 {
		return fmt.Errorf("at least two people are required (got %d)", len(l.People))
	}
	if dup := firstDuplicate(l.People); dup != "" {
		return fmt.Errorf("person %q is listed twice", dup)
	}
	if len(l.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	if dup := firstDuplicate(l.Categories); dup != "" {
		return fmt.Errorf("category %q is listed twice", dup)
	}
	if _, err := l.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

func (n *NotifierConfig) validate(people []string) error {
	if n.ThresholdDays < 0 {
		return fmt.Errorf("threshold_days must be >= 0 (got %d)", n.ThresholdDays)
	}
	switch n.Channel {
	case "log":
	case "smtp":
		if n.SMTP.Host == "" || n.SMTP.From == "" {
			return fmt.Errorf("smtp.host and smtp.from are required for the smtp channel")
		}
	case "webhook":
		if n.WebhookURL == "" {
			return fmt.Errorf("webhook_url is required for the webhook channel")
		}
	default:
		return fmt.Errorf("unknown channel %q (want log, smtp or webhook)", n.Channel)
	}
	known := make(map[string]bool, len(people))
	for _, p := range people {
		known[p] = true
	}
	for person := range n.Addresses {
		if !known[person] {
			return fmt.Errorf("address configured for unknown person %q", person)
		}
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstDuplicate(values []string) string {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}
