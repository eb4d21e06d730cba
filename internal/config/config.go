package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// RedisConfig holds connection parameters for the Redis-backed person store.
type RedisConfig struct {
	// Address is the host:port of the Redis server.
	Address string `yaml:"address"`
	// Password is the optional Redis AUTH password.
	Password string `yaml:"password"`
	// DB is the Redis logical database number.
	DB int `yaml:"db"`
	// Key is the Redis key under which the person records document is stored.
	Key string `yaml:"key"`
}

// Config holds settings shared by the safeguard binaries.
type Config struct {
	// ListenAddress is the HTTP listen address of the watchdog server.
	ListenAddress string `yaml:"listen_address"`
	// ServerURL is the base URL the checker binary uses to reach the server.
	ServerURL string `yaml:"server_url"`
	// StoreBackend selects the person store implementation: "file" or "redis".
	StoreBackend string `yaml:"store_backend"`
	// StateFile is the path to the JSON file storing person records.
	StateFile string `yaml:"state_file"`
	// Redis configures the Redis store when StoreBackend is "redis".
	Redis RedisConfig `yaml:"redis"`
	// NotifierBaseURL is the delivery provider endpoint for alert messages.
	NotifierBaseURL string `yaml:"notifier_base_url"`
	// NotifierTimeout bounds a single delivery attempt.
	NotifierTimeout time.Duration `yaml:"notifier_timeout"`
	// WindowStart is the fallback daily check-in window start (HH:MM).
	WindowStart string `yaml:"window_start"`
	// WindowEnd is the fallback daily check-in window end (HH:MM).
	WindowEnd string `yaml:"window_end"`
	// CountryCallingCode is the default country code for trunk-prefixed phone numbers.
	CountryCallingCode string `yaml:"country_calling_code"`
	// CheckInterval enables the in-process evaluation trigger when positive.
	// Zero leaves triggering to an external scheduler.
	CheckInterval time.Duration `yaml:"check_interval"`
	// LogLevel is the minimum log level (debug, info, warn, error, fatal).
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for server settings.
	DefaultConfigFilename = "safeguard-settings.yaml"

	// DefaultStateFilename is the default filename for the person records JSON.
	DefaultStateFilename = "safeguard-users.json"

	// DefaultListenAddress is the default HTTP listen address.
	DefaultListenAddress = ":5000"

	// DefaultStoreBackend is the default persistence backend.
	DefaultStoreBackend = "file"

	// DefaultRedisKey is the default Redis key for the person records document.
	DefaultRedisKey = "safeguard:users"

	// DefaultNotifierBaseURL is the default delivery provider endpoint.
	DefaultNotifierBaseURL = "https://api.callmebot.com/whatsapp.php"

	// DefaultNotifierTimeout is the default ceiling for one delivery attempt.
	DefaultNotifierTimeout = 10 * time.Second

	// DefaultWindowStart is the fallback check-in window start.
	DefaultWindowStart = "07:00"

	// DefaultWindowEnd is the fallback check-in window end.
	DefaultWindowEnd = "08:30"

	// DefaultCountryCallingCode is the default country code for national numbers.
	DefaultCountryCallingCode = "31"

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownStoreBackend is returned for a backend other than file or redis.
	errUnknownStoreBackend = errors.New(`store backend must be "file" or "redis"`)
	// errRedisAddressRequired is returned when the redis backend lacks an address.
	errRedisAddressRequired = errors.New("redis address must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
//
//nolint:cyclop // Linear default-filling, splitting would not make it clearer.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	switch cfg.StoreBackend {
	case "":
		cfg.StoreBackend = DefaultStoreBackend
	case "file", "redis":
	default:
		return errUnknownStoreBackend
	}

	if cfg.StoreBackend == "redis" && cfg.Redis.Address == "" {
		return errRedisAddressRequired
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	if cfg.Redis.Key == "" {
		cfg.Redis.Key = DefaultRedisKey
	}

	if cfg.NotifierBaseURL == "" {
		cfg.NotifierBaseURL = DefaultNotifierBaseURL
	}

	if _, err := url.ParseRequestURI(cfg.NotifierBaseURL); err != nil {
		return fmt.Errorf("invalid notifier base URL: %w", err)
	}

	if cfg.NotifierTimeout <= 0 {
		cfg.NotifierTimeout = DefaultNotifierTimeout
	}

	if cfg.WindowStart == "" {
		cfg.WindowStart = DefaultWindowStart
	}

	if cfg.WindowEnd == "" {
		cfg.WindowEnd = DefaultWindowEnd
	}

	if cfg.CountryCallingCode == "" {
		cfg.CountryCallingCode = DefaultCountryCallingCode
	}

	if cfg.ServerURL != "" {
		if _, err := url.ParseRequestURI(cfg.ServerURL); err != nil {
			return fmt.Errorf("invalid server URL: %w", err)
		}
	}

	return nil
}
