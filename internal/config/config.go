package config

import (
	"errors"
	"io/fs"
	"net"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// UploadsPath is where the server itself serves uploaded files. Without a
// configured uploads.base_url, file URLs point there.
const UploadsPath = "/uploads"

// ServerConfig is the HTTP listener configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"` // Listen address, e.g. ":8080"
}

// StorageConfig selects where saved QR codes are persisted.
//
// WARNING: DatabaseURL may carry credentials and should not be logged.
type StorageConfig struct {
	Type        string `mapstructure:"type" yaml:"type"`                 // "file" or "postgres"
	FilePath    string `mapstructure:"file_path" yaml:"file_path"`       // JSON file for the file store
	DatabaseURL string `mapstructure:"database_url" yaml:"database_url"` // Secret: PostgreSQL connection string
	SSLEnabled  bool   `mapstructure:"ssl_enabled" yaml:"ssl_enabled"`   // Adds sslmode=require when the URL has no sslmode
}

// UploadsConfig is the logo/content upload storage.
type UploadsConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`           // Directory uploaded files are written to
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"` // Public base URL uploaded files are served from
	MaxBytes int64  `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// AssetsConfig controls where frame and logo artwork is loaded from.
type AssetsConfig struct {
	// RemoteBaseURL, when set, makes suggested logos load over HTTP instead of
	// from the embedded asset set.
	RemoteBaseURL string        `mapstructure:"remote_base_url" yaml:"remote_base_url"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`
	FetchAttempts uint          `mapstructure:"fetch_attempts" yaml:"fetch_attempts"`
}

// PreviewConfig tunes the live preview.
type PreviewConfig struct {
	Debounce    time.Duration `mapstructure:"debounce" yaml:"debounce"`         // Coalescing window for preview notifications
	DefaultData string        `mapstructure:"default_data" yaml:"default_data"` // Content encoded before a destination exists
	ShortDomain string        `mapstructure:"short_domain" yaml:"short_domain"` // Domain used to build short-link placeholder content
}

// LogConfig is the logger configuration.
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Config wraps the entire service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Uploads UploadsConfig `mapstructure:"uploads" yaml:"uploads"`
	Assets  AssetsConfig  `mapstructure:"assets" yaml:"assets"`
	Preview PreviewConfig `mapstructure:"preview" yaml:"preview"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// Load loads the config from the file path, falling back to env vars if the
// file does not exist. Env vars that are set override values from the file.
func Load(filePath string) (*Config, error) {
	v := newViper()

	if filePath != "" {
		v.SetConfigFile(filePath)
		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	return unmarshal(v)
}

// LoadEnv loads the config from defaults and environment variables only.
func LoadEnv() (*Config, error) {
	return unmarshal(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, envs := range envBindings {
		// BindEnv only errors when called without a key.
		_ = v.BindEnv(slices.Insert(envs, 0, key)...)
	}

	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.normalize()

	return cfg, nil
}

func (c *Config) normalize() {
	if port := strings.TrimSpace(c.Server.Addr); port != "" && !strings.Contains(port, ":") {
		c.Server.Addr = ":" + port
	}
	if strings.TrimSpace(c.Uploads.BaseURL) == "" {
		c.Uploads.BaseURL = localURL(c.Server.Addr) + UploadsPath
	}
	c.Uploads.BaseURL = strings.TrimRight(c.Uploads.BaseURL, "/")
	c.Storage.Type = strings.ToLower(strings.TrimSpace(c.Storage.Type))
}

// localURL is the origin of the server listening on addr, or "" when addr
// cannot be parsed. File URLs end up in QR codes, so they need an origin.
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return ""
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

var (
	defaults = map[string]any{
		"server.addr":            ":8080",
		"storage.type":           "file",
		"storage.file_path":      "data/qrs.json",
		"uploads.dir":            "uploads",
		"uploads.max_bytes":      5 << 20,
		"assets.fetch_timeout":   5 * time.Second,
		"assets.fetch_attempts":  3,
		"preview.debounce":       50 * time.Millisecond,
		"preview.default_data":   "https://getqr.com",
		"preview.short_domain":   "getqr.link",
		"log.level":              "info",
		"log.development":        false,
		"storage.ssl_enabled":    false,
		"assets.remote_base_url": "",
	}

	// envBindings maps config keys to the environment variables that can set
	// them. The first name is preferred; later names are kept for deployments
	// that still export the old variables.
	envBindings = map[string][]string{
		"server.addr":            {"QRSTUDIO_SERVER_ADDR", "PORT"},
		"storage.type":           {"QRSTUDIO_STORAGE_TYPE"},
		"storage.file_path":      {"QRSTUDIO_STORAGE_FILE_PATH"},
		"storage.database_url":   {"QRSTUDIO_STORAGE_DATABASE_URL", "DATABASE_URL"},
		"storage.ssl_enabled":    {"QRSTUDIO_STORAGE_SSL_ENABLED"},
		"uploads.dir":            {"QRSTUDIO_UPLOADS_DIR"},
		"uploads.base_url":       {"QRSTUDIO_UPLOADS_BASE_URL", "NEXT_PUBLIC_STORAGE_BASE_URL"},
		"uploads.max_bytes":      {"QRSTUDIO_UPLOADS_MAX_BYTES"},
		"assets.remote_base_url": {"QRSTUDIO_ASSETS_REMOTE_BASE_URL"},
		"assets.fetch_timeout":   {"QRSTUDIO_ASSETS_FETCH_TIMEOUT"},
		"assets.fetch_attempts":  {"QRSTUDIO_ASSETS_FETCH_ATTEMPTS"},
		"preview.debounce":       {"QRSTUDIO_PREVIEW_DEBOUNCE"},
		"preview.default_data":   {"QRSTUDIO_PREVIEW_DEFAULT_DATA"},
		"preview.short_domain":   {"QRSTUDIO_PREVIEW_SHORT_DOMAIN"},
		"log.level":              {"QRSTUDIO_LOG_LEVEL"},
		"log.development":        {"QRSTUDIO_LOG_DEVELOPMENT"},
	}
)
