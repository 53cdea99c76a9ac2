package config

import (
	"time"
	// Embedded zone database so the ledger time zone resolves on minimal images.
	_ "time/tzdata"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Notifier NotifierConfig `yaml:"notifier"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// RateLimit is the number of requests allowed per client IP per minute.
	RateLimit int `yaml:"rate_limit" env:"SERVER_RATE_LIMIT" env-default:"120"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"pretty"`
}

// StorageConfig selects the worksheet backend.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	Path   string `yaml:"path"   env:"STORAGE_PATH"   env-default:"./data/ledger.db"`
	Sheet  string `yaml:"sheet"  env:"STORAGE_SHEET"  env-default:"family_ledger"`
}

// LedgerConfig holds the closed sets the board validates against.
type LedgerConfig struct {
	People     []string `yaml:"people"     env:"LEDGER_PEOPLE"     env-separator:"," env-default:"Elia,Tommy,Mamma,Papà,Alice"`
	Categories []string `yaml:"categories" env:"LEDGER_CATEGORIES" env-separator:"," env-default:"Università,Salute,Spesa,Casa,Viaggi,Regali,Altro"`
	Timezone   string   `yaml:"timezone"   env:"LEDGER_TIMEZONE"   env-default:"Europe/Rome"`
}

// NotifierConfig holds due-soon reminder settings.
type NotifierConfig struct {
	ThresholdDays int    `yaml:"threshold_days" env:"NOTIFIER_THRESHOLD_DAYS" env-default:"7"`
	Channel       string `yaml:"channel"        env:"NOTIFIER_CHANNEL"        env-default:"log"`
	Cron          string `yaml:"cron"           env:"NOTIFIER_CRON"           env-default:"0 8 * * *"`
	// Addresses maps a person to an email address or webhook recipient.
	Addresses  map[string]string `yaml:"addresses"   env:"NOTIFIER_ADDRESSES"`
	WebhookURL string            `yaml:"webhook_url" env:"NOTIFIER_WEBHOOK_URL"`
	SMTP       SMTPConfig        `yaml:"smtp"`
}

// SMTPConfig holds the mail relay used by the smtp channel.
type SMTPConfig struct {
	Host     string `yaml:"host"     env:"SMTP_HOST"`
	Port     int    `yaml:"port"     env:"SMTP_PORT"     env-default:"587"`
	From     string `yaml:"from"     env:"SMTP_FROM"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
}

// RedisConfig holds the queue and run log connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"     env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
}

// AuthConfig holds the family login settings. Authentication is off when
// PassphraseHash is empty.
type AuthConfig struct {
	PassphraseHash string        `yaml:"passphrase_hash" env:"AUTH_PASSPHRASE_HASH"`
	JWTSecret      string        `yaml:"jwt_secret"      env:"AUTH_JWT_SECRET"`
	TokenTTL       time.Duration `yaml:"token_ttl"       env:"AUTH_TOKEN_TTL"       env-default:"720h"`
}

// Enabled reports whether the API requires a login.
func (a AuthConfig) Enabled() bool {
	return a.PassphraseHash != ""
}

// Location returns the configured ledger time zone.
func (l LedgerConfig) Location() (*time.Location, error) {
	return time.LoadLocation(l.Timezone)
}
