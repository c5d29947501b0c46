package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    time.Duration
		wantErr bool
	}{
		{"default", map[string]string{"JWT_SECRET": "s"}, 24 * time.Hour, false},
		{"minutes", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRE_MINUTES": "90"}, 90 * time.Minute, false},
		{"hours", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRATION_HOURS": "2"}, 2 * time.Hour, false},
		{"minutes win", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRE_MINUTES": "5", "JWT_EXPIRATION_HOURS": "2"}, 5 * time.Minute, false},
		{"legacy secret name", map[string]string{"JWT_SECRET_KEY": "s"}, 24 * time.Hour, false},
		{"missing secret", map[string]string{}, 0, true},
		{"zero expiration", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRE_MINUTES": "0"}, 0, true},
		{"non numeric", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRE_MINUTES": "soon"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"JWT_SECRET", "JWT_SECRET_KEY", "JWT_ISSUER", "JWT_EXPIRE_MINUTES", "JWT_EXPIRATION_HOURS"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := NewJWTConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Expiration)
			assert.Equal(t, "resume-revamp", cfg.Issuer)
		})
	}
}

func TestNewPasswordConfig(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("PASSWORD_PEPPER", "")
	cfg, err := NewPasswordConfig()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.BcryptCost)

	for _, bad := range []string{"9", "15", "abc"} {
		t.Setenv("BCRYPT_COST", bad)
		_, err := NewPasswordConfig()
		assert.Error(t, err, "cost %s", bad)
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10, Pepper: "pepper"}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))

	unpeppered := &PasswordConfig{BcryptCost: 10}
	assert.False(t, unpeppered.VerifyPassword("correct horse", hash))
}

func TestPasswordConfig_RejectsLongPasswords(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}
	_, err := cfg.HashPassword(strings.Repeat("a", 73))
	assert.Error(t, err)
	assert.False(t, cfg.VerifyPassword(strings.Repeat("a", 73), "$2a$10$invalid"))
}
