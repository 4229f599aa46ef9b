package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort          = 8080
	DefaultLogLevel          = "info"
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultBaseURL           = "https://owpublic.blob.core.windows.net/tech-task"
	DefaultRemoteTimeout     = 10 * time.Second
	DefaultReportConcurrency = 25
	DefaultRateBurst         = 1
)

// Environment variables that override file values.
const (
	EnvHTTPPort      = "CREDITMETER_HTTP_PORT"
	EnvLogLevel      = "CREDITMETER_LOG_LEVEL"
	EnvBaseURL       = "CREDITMETER_REMOTE_BASE_URL"
	EnvRemoteTimeout = "CREDITMETER_REMOTE_TIMEOUT"
)

// Config is the top-level configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Remote RemoteConfig `yaml:"remote"`
}

// ServerConfig holds the inbound HTTP settings.
type ServerConfig struct {
	// HTTPPort is the port GET /usage is served on.
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of: debug | info | warn | error. Applied on hot reload.
	LogLevel string `yaml:"log_level"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RemoteConfig describes the upstream messages/reports source.
type RemoteConfig struct {
	// BaseURL is the prefix for /messages/current-period and /reports/{id}.
	BaseURL string `yaml:"base_url"`

	// Timeout applies to every outbound request.
	Timeout time.Duration `yaml:"timeout"`

	// ReportConcurrency is the number of report fetches allowed in flight at once.
	ReportConcurrency int `yaml:"report_concurrency"`

	// RateLimit caps outbound requests per second. 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`

	// RateBurst is the token bucket size used when RateLimit is set.
	RateBurst int `yaml:"rate_burst"`

	Auth AuthConfig `yaml:"auth"`
	TLS  TLSConfig  `yaml:"tls"`
}

// AuthConfig specifies how requests to the remote source are authenticated.
type AuthConfig struct {
	// Mode is one of: none | apikey | bearer | basic | mtls.
	Mode string `yaml:"mode"`

	// mTLS fields, used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`

	// Header is the HTTP header carrying the API key when Mode == "apikey".
	Header string `yaml:"header"`
	// KeyEnv names the environment variable that holds the API key.
	KeyEnv string `yaml:"key_env"`

	// TokenEnv names the environment variable that holds the bearer token.
	TokenEnv string `yaml:"token_env"`

	Username string `yaml:"username"`
	// PasswordEnv names the environment variable that holds the basic-auth password.
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// TLSConfig holds TLS dial options for the remote source.
type TLSConfig struct {
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	loadDotEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadDefaults returns Defaults() with environment overrides applied.
// Used when no config file exists.
func LoadDefaults() (*Config, error) {
	loadDotEnv("")

	cfg := Defaults()
	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a Config pre-populated with default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        DefaultHTTPPort,
			LogLevel:        DefaultLogLevel,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Remote: RemoteConfig{
			BaseURL:           DefaultBaseURL,
			Timeout:           DefaultRemoteTimeout,
			ReportConcurrency: DefaultReportConcurrency,
			RateBurst:         DefaultRateBurst,
			Auth:              AuthConfig{Mode: "none"},
		},
	}
}

// loadDotEnv loads .env from the working directory and from next to the
// config file. Variables already set in the environment win.
func loadDotEnv(configPath string) {
	paths := []string{".env"}
	if configPath != "" {
		if p := filepath.Join(filepath.Dir(configPath), ".env"); p != ".env" {
			paths = append(paths, p)
		}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("config: could not load .env", "path", p, "err", err)
		}
	}
}

// applyEnv overrides file values with CREDITMETER_* environment variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPPort, err)
		}
		cfg.Server.HTTPPort = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv(EnvRemoteTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRemoteTimeout, err)
		}
		cfg.Remote.Timeout = d
	}
	return nil
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort < 1 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d out of range", cfg.Server.HTTPPort)
	}
	if _, err := ParseLevel(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("server.log_level: %w", err)
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	r := cfg.Remote
	u, err := url.Parse(r.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("remote.base_url %q must be an absolute http(s) URL", r.BaseURL)
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("remote.timeout must be positive")
	}
	if r.ReportConcurrency < 1 {
		return fmt.Errorf("remote.report_concurrency must be at least 1")
	}
	if r.RateLimit < 0 {
		return fmt.Errorf("remote.rate_limit must not be negative")
	}
	if r.RateLimit > 0 && r.RateBurst < 1 {
		return fmt.Errorf("remote.rate_burst must be at least 1 when rate_limit is set")
	}

	switch r.Auth.Mode {
	case "none", "":
	case "apikey":
		if r.Auth.Header == "" {
			return fmt.Errorf("remote.auth: apikey mode requires header")
		}
	case "bearer", "basic":
	case "mtls":
		if r.Auth.CertFile == "" || r.Auth.KeyFile == "" {
			return fmt.Errorf("remote.auth: mtls mode requires cert_file and key_file")
		}
	default:
		return fmt.Errorf("remote.auth: unknown mode %q", r.Auth.Mode)
	}
	return nil
}

// ParseLevel maps a log_level string to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
}
