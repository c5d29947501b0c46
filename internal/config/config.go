// Package config loads server configuration from an optional YAML file and
// the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultPort          = 8000
	DefaultATSServiceURL = "https://ats-service-b6gx.onrender.com"
	DefaultRenderDesign  = "engineeringClassic"
	DefaultDesignsDir    = "designs"
	DefaultLocalStorage  = "uploads"
	DefaultLogLevel      = "info"
	DefaultMaxUploadMB   = 10
	DefaultATSCacheTTL   = 24 * time.Hour
)

// S3Config configures object storage. An empty bucket selects local disk storage.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// Config is the server and CLI configuration. Environment variables override
// values from the YAML file.
type Config struct {
	Port        int    `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	GeminiAPIKey  string `yaml:"gemini_api_key"`
	ATSServiceURL string `yaml:"ats_service_url"`

	RenderCVBin  string `yaml:"rendercv_bin"`
	RenderDesign string `yaml:"render_design"`
	DesignsDir   string `yaml:"designs_dir"`
	WatchBaseDir string `yaml:"watch_base_dir"`

	S3              S3Config `yaml:"s3"`
	LocalStorageDir string   `yaml:"local_storage_dir"`

	ValkeyAddr     string        `yaml:"valkey_addr"`
	ValkeyPassword string        `yaml:"valkey_password"`
	ATSCacheTTL    time.Duration `yaml:"ats_cache_ttl"`

	LogLevel    string   `yaml:"log_level"`
	CORSOrigins []string `yaml:"cors_origins"`
	MaxUploadMB int      `yaml:"max_upload_mb"`
}

// Load reads the YAML file at path (if path is not empty), applies
// environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.ATSServiceURL, "ATS_SERVICE_URL")
	setString(&c.RenderCVBin, "RENDERCV_BIN")
	setString(&c.RenderDesign, "RENDER_DESIGN")
	setString(&c.DesignsDir, "DESIGNS_DIR")
	setString(&c.WatchBaseDir, "WATCH_BASE_DIR")
	setString(&c.S3.Bucket, "S3_BUCKET")
	setString(&c.S3.Region, "S3_REGION")
	setString(&c.S3.Endpoint, "S3_ENDPOINT")
	setString(&c.S3.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&c.S3.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setString(&c.LocalStorageDir, "LOCAL_STORAGE_DIR")
	setString(&c.ValkeyAddr, "VALKEY_ADDR")
	setString(&c.ValkeyPassword, "VALKEY_PASSWORD")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	if err := setInt(&c.Port, "PORT"); err != nil {
		return err
	}
	if err := setInt(&c.MaxUploadMB, "MAX_UPLOAD_MB"); err != nil {
		return err
	}
	if v := os.Getenv("S3_USE_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid S3_USE_PATH_STYLE: %v", err)
		}
		c.S3.UsePathStyle = b
	}
	if v := os.Getenv("ATS_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ATS_CACHE_TTL: %v", err)
		}
		c.ATSCacheTTL = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ATSServiceURL == "" {
		c.ATSServiceURL = DefaultATSServiceURL
	}
	if c.RenderCVBin == "" {
		c.RenderCVBin = "rendercv"
	}
	if c.RenderDesign == "" {
		c.RenderDesign = DefaultRenderDesign
	}
	if c.DesignsDir == "" {
		c.DesignsDir = DefaultDesignsDir
	}
	if c.WatchBaseDir == "" {
		c.WatchBaseDir = os.TempDir()
	}
	if c.LocalStorageDir == "" {
		c.LocalStorageDir = DefaultLocalStorage
	}
	if c.ATSCacheTTL == 0 {
		c.ATSCacheTTL = DefaultATSCacheTTL
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.MaxUploadMB == 0 {
		c.MaxUploadMB = DefaultMaxUploadMB
	}
}

// Validate checks value ranges. It does not require DATABASE_URL; commands
// that need the database call RequireDatabase.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port out of range: %d", c.Port)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("config error: max_upload_mb must be positive")
	}
	if c.ATSCacheTTL < 0 {
		return fmt.Errorf("config error: ats_cache_ttl must be non-negative")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.S3.Bucket != "" && c.S3.Region == "" {
		return fmt.Errorf("config error: S3_REGION is required when S3_BUCKET is set")
	}
	return nil
}

// RequireDatabase returns an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	return nil
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %v", key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
