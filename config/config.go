// Package config assembles runtime settings from defaults and the
// environment. The signing secret has no default on purpose: a service
// that cannot sign tokens must fail at startup, not at the first login.
package config

import (
	"os"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/fleetops/driverhub/auth"
)

type Config struct {
	HTTPAddr        string
	DatabaseDSN     string
	SigningSecret   string
	SigningMethod   string
	Issuer          string
	ContextKey      string
	TokenLookup     string
	TokenExpiration int
}

var _ auth.Config = (*Config)(nil)

// LoadDefaults returns the baseline configuration
func LoadDefaults() *Config {
	return &Config{
		HTTPAddr:        ":8080",
		DatabaseDSN:     "file:driverhub.db?cache=shared&_pragma=foreign_keys(1)",
		SigningMethod:   "HS256",
		Issuer:          "driverhub",
		ContextKey:      "user",
		TokenLookup:     "header:Authorization",
		TokenExpiration: 30,
	}
}

// Load builds the configuration from defaults overlaid with environment
// variables, and validates the result.
func Load() (*Config, error) {
	cfg := LoadDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFromEnv() {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("DRIVERHUB_HTTP_ADDR", &c.HTTPAddr)
	setString("DRIVERHUB_DATABASE_DSN", &c.DatabaseDSN)
	setString("DRIVERHUB_SIGNING_SECRET", &c.SigningSecret)
	setString("DRIVERHUB_SIGNING_METHOD", &c.SigningMethod)
	setString("DRIVERHUB_ISSUER", &c.Issuer)
	setString("DRIVERHUB_CONTEXT_KEY", &c.ContextKey)
	setString("DRIVERHUB_TOKEN_LOOKUP", &c.TokenLookup)

	if v, ok := os.LookupEnv("DRIVERHUB_TOKEN_EXPIRATION"); ok && v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			c.TokenExpiration = minutes
		}
	}
}

// Validate will validate the configuration
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SigningSecret,
			validation.Required.Error("DRIVERHUB_SIGNING_SECRET must be set")),
		validation.Field(&c.SigningMethod,
			validation.Required, validation.In("HS256")),
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.TokenExpiration, validation.Min(1)),
	)
}

func (c *Config) GetSigningKey() string {
	return c.SigningSecret
}

func (c *Config) GetSigningMethod() string {
	return c.SigningMethod
}

func (c *Config) GetContextKey() string {
	return c.ContextKey
}

func (c *Config) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *Config) GetTokenLookup() string {
	return c.TokenLookup
}

func (c *Config) GetIssuer() string {
	return c.Issuer
}
