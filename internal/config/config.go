package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

type Config struct {
	Env  string `env:"ENV" env-default:"local"`
	Port string `env:"PORT" env-default:"8080"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	Store           StoreConfig
	Auth            AuthConfig
	UI              UIConfig
	// LogFile is only honoured by the terminal client, which owns stdout.
	LogFile string `env:"LOG_FILE"`
}

type StoreConfig struct {
	Backend         string `env:"STORE_BACKEND" env-default:"firestore"`
	ProjectID       string `env:"GOOGLE_CLOUD_PROJECT"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type AuthConfig struct {
	Issuer            string        `env:"AUTH_ISSUER" env-default:"todo-sync"`
	SigningKey        string        `env:"AUTH_SIGNING_KEY" env-required:"true"`
	TokenTTL          time.Duration `env:"AUTH_TOKEN_TTL" env-default:"24h"`
	MinPasswordLength int           `env:"AUTH_MIN_PASSWORD_LENGTH" env-default:"6"`
}

type UIConfig struct {
	RedirectDelay time.Duration `env:"LOGIN_REDIRECT_DELAY" env-default:"3s"`
	ToastDuration time.Duration `env:"TOAST_DURATION" env-default:"1500ms"`
}

var (
	ErrUnknownEnv       = errors.New("unknown env")
	ErrUnknownBackend   = errors.New("unknown store backend")
	ErrProjectIDMissing = errors.New("GOOGLE_CLOUD_PROJECT environment variable is required")
)

// Validate checks the rules cleanenv tags cannot express.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEnv, c.Env)
	}

	switch c.Store.Backend {
	case BackendFirestore:
		if c.Store.ProjectID == "" {
			return ErrProjectIDMissing
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownBackend, c.Store.Backend)
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}
