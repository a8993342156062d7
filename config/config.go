package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting. It is constructed once in main and
// passed down to services; nothing reads environment variables after Load.
type Config struct {
	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	ListenAddr     string `envconfig:"LISTEN_ADDR" default:":5300"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiryHours int    `envconfig:"JWT_EXPIRY_HOURS" default:"24"`

	MollieAPIKey    string `envconfig:"MOLLIE_API_KEY"`
	MollieBaseURL   string `envconfig:"MOLLIE_BASE_URL" default:"https://api.mollie.com"`
	RedirectBaseURL string `envconfig:"REDIRECT_BASE_URL" default:"http://localhost:3000"`
	WebhookBaseURL  string `envconfig:"WEBHOOK_BASE_URL" default:"http://localhost:5300"`

	CentsPerCredit            int     `envconfig:"CENTS_PER_CREDIT" default:"10"`
	SecretExposureProbability float64 `envconfig:"SECRET_EXPOSURE_PROBABILITY" default:"0.05"`

	ReconcileEnabled         bool `envconfig:"RECONCILE_ENABLED" default:"true"`
	ReconcileIntervalMinutes int  `envconfig:"RECONCILE_INTERVAL_MINUTES" default:"5"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces constraints envconfig tags cannot express.
func (c *Config) Validate() error {
	if c.CentsPerCredit <= 0 {
		return fmt.Errorf("CENTS_PER_CREDIT must be positive, got %d", c.CentsPerCredit)
	}
	if c.SecretExposureProbability < 0 || c.SecretExposureProbability > 1 {
		return fmt.Errorf("SECRET_EXPOSURE_PROBABILITY must be within [0,1], got %f", c.SecretExposureProbability)
	}
	if c.JWTExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", c.JWTExpiryHours)
	}
	if c.ReconcileIntervalMinutes <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL_MINUTES must be positive, got %d", c.ReconcileIntervalMinutes)
	}
	return nil
}
