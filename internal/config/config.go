package config

import (
	"os"
	"time"

	"github.com/GregMSThompson/finance-widgets/internal/dto"
)

const (
	defaultPort           = "8080"
	defaultRefreshTimeout = 30 * time.Second
)

type Config struct {
	ProjectID        string
	LogLevel         string
	Port             string
	WidgetCollection string
	RefreshTimeout   time.Duration

	// Bank linking. Off unless PLAIDCLIENTID is set.
	PlaidClientID    string
	PlaidSecret      string
	PlaidSecretID    string // Secret Manager secret read when PLAIDSECRET is empty
	PlaidEnvironment dto.PlaidEnvironment
	KMSKeyName       string
}

func New() *Config {
	return &Config{
		ProjectID:        os.Getenv("PROJECTID"),
		LogLevel:         os.Getenv("LOGLEVEL"),
		Port:             getOr("PORT", defaultPort),
		WidgetCollection: os.Getenv("WIDGETCOLLECTION"),
		RefreshTimeout:   getDuration("REFRESHTIMEOUT", defaultRefreshTimeout),
		PlaidClientID:    os.Getenv("PLAIDCLIENTID"),
		PlaidSecret:      os.Getenv("PLAIDSECRET"),
		PlaidSecretID:    os.Getenv("PLAIDSECRETID"),
		PlaidEnvironment: getPlaidEnvironment(os.Getenv("PLAIDENVIRONMENT")),
		KMSKeyName:       os.Getenv("KMSKEYNAME"),
	}
}

func (c *Config) BankLinkingEnabled() bool {
	return c.PlaidClientID != ""
}

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration reads a Go duration string such as "45s"; anything unparsable
// falls back.
func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getPlaidEnvironment(env string) dto.PlaidEnvironment {
	switch env {
	case "sandbox":
		return dto.PlaidSandbox
	case "development":
		return dto.PlaidDevelopment
	default: // "production"
		return dto.PlaidProduction
	}
}
