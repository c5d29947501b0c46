package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultJWTExpiration is the access token lifetime when none is configured.
const DefaultJWTExpiration = 24 * time.Hour

// JWTConfig holds configuration for access token signing and validation.
type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// NewJWTConfig reads JWT_SECRET (or JWT_SECRET_KEY), JWT_ISSUER and the token
// lifetime from JWT_EXPIRE_MINUTES, falling back to JWT_EXPIRATION_HOURS.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("JWT_SECRET_KEY")
	}
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	cfg := &JWTConfig{
		Secret:     secret,
		Issuer:     os.Getenv("JWT_ISSUER"),
		Expiration: DefaultJWTExpiration,
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "resume-revamp"
	}

	if v := os.Getenv("JWT_EXPIRE_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRE_MINUTES: %v", err)
		}
		cfg.Expiration = time.Duration(minutes) * time.Minute
	} else if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		cfg.Expiration = time.Duration(hours) * time.Hour
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.Expiration < time.Minute {
		return fmt.Errorf("token expiration must be at least one minute, got: %s", c.Expiration)
	}
	return nil
}
