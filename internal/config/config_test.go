package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "GEMINI_API_KEY", "ATS_SERVICE_URL", "RENDERCV_BIN", "RENDER_DESIGN",
		"DESIGNS_DIR", "WATCH_BASE_DIR", "S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_ACCESS_KEY_ID",
		"S3_SECRET_ACCESS_KEY", "S3_USE_PATH_STYLE", "LOCAL_STORAGE_DIR", "VALKEY_ADDR",
		"VALKEY_PASSWORD", "ATS_CACHE_TTL", "LOG_LEVEL", "CORS_ORIGINS", "PORT", "MAX_UPLOAD_MB",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultATSServiceURL, cfg.ATSServiceURL)
	assert.Equal(t, DefaultRenderDesign, cfg.RenderDesign)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, DefaultATSCacheTTL, cfg.ATSCacheTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Error(t, cfg.RequireDatabase())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
database_url: postgres://file
render_design: sb2nov
ats_cache_ttl: 2h
cors_origins: ["http://localhost:3000"]
s3:
  bucket: resumes
  region: us-east-1
`), 0o644))

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, "sb2nov", cfg.RenderDesign)
	assert.Equal(t, 2*time.Hour, cfg.ATSCacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "resumes", cfg.S3.Bucket)
	assert.NoError(t, cfg.RequireDatabase())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "eighty"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}},
		{"bucket without region", map[string]string{"S3_BUCKET": "resumes"}},
		{"bad ttl", map[string]string{"ATS_CACHE_TTL": "soon"}},
		{"bad path style", map[string]string{"S3_USE_PATH_STYLE": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	lvl, err := ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}
