package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Address   string `env:"ADDRESS" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`
	AuthDisabled            bool   `env:"AUTH_DISABLED" envDefault:"false"`
	DefaultActor            string `env:"DEFAULT_ACTOR" envDefault:"admin"`

	// empty means every built-in collection
	LeadCollections       []string      `env:"LEAD_COLLECTIONS" envSeparator:","`
	CORSOrigins           []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	RateLimitMax          int           `env:"RATE_LIMIT_MAX" envDefault:"30"`
	RateLimitWindow       time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	SnapshotRetryInterval time.Duration `env:"SNAPSHOT_RETRY_INTERVAL" envDefault:"5s"`

	RabbitMQURL string `env:"RABBITMQ_URL"`

	MailHost string `env:"MAIL_HOST"`
	MailPort int    `env:"MAIL_PORT" envDefault:"587"`
	MailUser string `env:"MAIL_USER"`
	MailPass string `env:"MAIL_PASS"`
	MailFrom string `env:"MAIL_FROM"`
}

// Load reads an optional .env file and then parses the process environment.
func Load(files ...string) (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load(files...)

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.FirebaseProjectID == "" && !c.AuthDisabled {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required unless AUTH_DISABLED is set")
	}
	if c.RateLimitMax < 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must not be negative")
	}
	if c.SnapshotRetryInterval <= 0 {
		return fmt.Errorf("SNAPSHOT_RETRY_INTERVAL must be positive")
	}
	return nil
}

func (c Config) MailEnabled() bool {
	return c.MailHost != "" && c.MailFrom != ""
}
