package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultIMAPServer is used when GMAIL_IMAP_SERVER is not set.
const DefaultIMAPServer = "imap.gmail.com"

// Mailbox holds the credentials needed to open one IMAP session.
type Mailbox struct {
	Server   string `env:"GMAIL_IMAP_SERVER" envDefault:"imap.gmail.com"`
	Username string `env:"GMAIL_USERNAME"`
	Password string `env:"GMAIL_PASSWORD"`
}

// HasCredentials reports whether both username and password are set.
func (m Mailbox) HasCredentials() bool {
	return m.Username != "" && m.Password != ""
}

// Config holds the application configuration
type Config struct {
	Mailbox     Mailbox
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"INFO"`
	ToolTimeout time.Duration `env:"TOOL_TIMEOUT" envDefault:"60s"`
}

// Load reads configuration from environment variables and .env file.
// Missing credentials are not an error here: they are reported when a
// download is attempted.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.ToolTimeout <= 0 {
		return nil, fmt.Errorf("TOOL_TIMEOUT must be positive, got %s", cfg.ToolTimeout)
	}

	return cfg, nil
}
