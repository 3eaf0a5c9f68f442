package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/residentdesk/residentdesk/internal/session"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port                int           `envconfig:"PORT" default:"8080"`
	LogLevel            string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL         string        `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns          int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	Version             string        `envconfig:"VERSION" default:"dev"`
	JWTSecret           string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer           string        `envconfig:"JWT_ISSUER" default:"residentdesk"`
	SessionTTL          time.Duration `envconfig:"SESSION_TTL" default:"1h"`
	SessionSweep        time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"10m"`
	SessionRetention    time.Duration `envconfig:"SESSION_RETENTION" default:"24h"`
	BcryptCost          int           `envconfig:"BCRYPT_COST" default:"12"`
	BootstrapAdminEmail string        `envconfig:"BOOTSTRAP_ADMIN_EMAIL" default:""`
	MigrateOnStart      bool          `envconfig:"MIGRATE_ON_START" default:"true"`
	SessionFile         string        `envconfig:"SESSION_FILE" default:""`
	GateChangePolicy    string        `envconfig:"GATE_CHANGE_POLICY" default:"clear"`
	GateProfileRetries  int           `envconfig:"GATE_PROFILE_RETRIES" default:"0"`
	GateRetryBackoff    time.Duration `envconfig:"GATE_RETRY_BACKOFF" default:"250ms"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := session.ParseChangePolicy(cfg.GateChangePolicy); err != nil {
		return nil, err
	}
	if cfg.GateProfileRetries < 0 {
		return nil, errors.New("GATE_PROFILE_RETRIES must not be negative")
	}
	return &cfg, nil
}

// GateOptions translates the gate settings into session options.
func (c *Config) GateOptions() []session.Option {
	policy, _ := session.ParseChangePolicy(c.GateChangePolicy)
	return []session.Option{
		session.WithChangePolicy(policy),
		session.WithProfileRetries(c.GateProfileRetries, c.GateRetryBackoff),
	}
}

// TokenPath returns where the CLI keeps its access token, defaulting to
// ~/.residentdesk/session.
func (c *Config) TokenPath() (string, error) {
	if c.SessionFile != "" {
		return c.SessionFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".residentdesk", "session"), nil
}
