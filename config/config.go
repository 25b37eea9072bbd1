package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration. Values are read from the
// environment, with an optional .env file loaded first.
type Config struct {
	// Token is the Discord bot credential. Required.
	Token string `env:"TOKEN,required"`

	// Prefix triggers sound commands, e.g. "!airhorn". It is
	// regexp-escaped before use, so symbols are safe.
	Prefix string `env:"PREFIX" envDefault:"!"`

	// SoundFolder is the root directory scanned for sound collections.
	SoundFolder string `env:"SOUND_FOLDER" envDefault:"audio"`

	// MaxQueueSize caps each guild's pending queue. Requests beyond the
	// cap are dropped silently.
	MaxQueueSize int `env:"MAX_QUEUE_SIZE" envDefault:"10"`

	// DisconnectDelay is the grace period between a guild's queue
	// draining and the voice connection being torn down.
	DisconnectDelay time.Duration `env:"DISCONNECT_DELAY" envDefault:"500ms"`

	// CommandRate and CommandBurst bound how fast a single user can issue
	// commands. Over-limit commands are ignored.
	CommandRate  float64 `env:"COMMAND_RATE" envDefault:"1"`
	CommandBurst int     `env:"COMMAND_BURST" envDefault:"3"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load reads configuration from a .env file (if present) and the process
// environment, then validates it.
func Load() (*Config, error) {
	// A missing .env file is fine; the system environment still applies.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Token == "" {
		errs = append(errs, "TOKEN is required")
	}
	if c.Prefix == "" {
		errs = append(errs, "PREFIX must not be empty")
	}
	if c.MaxQueueSize <= 0 {
		errs = append(errs, "MAX_QUEUE_SIZE must be greater than 0")
	}
	if c.DisconnectDelay < 0 {
		errs = append(errs, "DISCONNECT_DELAY must not be negative")
	}
	if c.CommandRate <= 0 {
		errs = append(errs, "COMMAND_RATE must be greater than 0")
	}
	if c.CommandBurst <= 0 {
		errs = append(errs, "COMMAND_BURST must be greater than 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// RedactedToken returns a redacted version of the token for logging.
func (c *Config) RedactedToken() string {
	if len(c.Token) < 8 {
		return "***"
	}
	return c.Token[:8] + "***"
}
