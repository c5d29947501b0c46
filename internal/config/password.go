package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced on signup.
const MinPasswordLength = 8

// bcrypt ignores input past 72 bytes
const maxPasswordBytes = 72

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string
}

// NewPasswordConfig reads BCRYPT_COST (default 12, allowed 10-14) and the
// optional PASSWORD_PEPPER.
func NewPasswordConfig() (*PasswordConfig, error) {
	cost := 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
		}
		cost = n
	}

	cfg := &PasswordConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("PASSWORD_PEPPER"),
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

func (c *PasswordConfig) peppered(pw string) ([]byte, error) {
	b := []byte(pw + c.Pepper)
	if len(b) > maxPasswordBytes {
		return nil, fmt.Errorf("password too long: %d bytes (max %d including pepper)", len(b), maxPasswordBytes)
	}
	return b, nil
}

// HashPassword hashes a password with bcrypt after appending the pepper.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	b, err := c.peppered(pw)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword(b, c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether pw matches storedHash.
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	b, err := c.peppered(pw)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), b) == nil
}
