package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/illarion/applock/internal/applock"
	"github.com/illarion/applock/internal/keyring"
)

const (
	// DefaultDBPath is the settings database used when none is configured
	DefaultDBPath = ".applock"
	// EnvConfigPath names the environment variable holding the config path
	EnvConfigPath = "APPLOCK_CONFIG"
	// DefaultConfigPath is read when EnvConfigPath is unset
	DefaultConfigPath = "applock.yaml"
)

// Config is the complete applock configuration
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Lock    LockConfig    `yaml:"lock"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig locates the settings database and the keyring namespace
type StorageConfig struct {
	Path           string `yaml:"path"`
	KeyringService string `yaml:"keyring_service"`
}

// LockConfig mirrors applock.Config
type LockConfig struct {
	PinMinLength     int    `yaml:"pin_min_length"`
	MaxAttempts      int    `yaml:"max_attempts"`
	AllowBiometrics  bool   `yaml:"allow_biometrics"`
	PBKDF2Iterations int    `yaml:"pbkdf2_iterations"`
	KeyPrefix        string `yaml:"key_prefix"`

	LockoutDuration time.Duration `yaml:"-"`
	AutoLockTimeout time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	LockoutDurationRaw string `yaml:"lockout_duration"`
	AutoLockTimeoutRaw string `yaml:"auto_lock_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	lock := applock.DefaultConfig()
	return &Config{
		Storage: StorageConfig{
			Path:           DefaultDBPath,
			KeyringService: keyring.DefaultService,
		},
		Lock: LockConfig{
			PinMinLength:     lock.PinMinLength,
			MaxAttempts:      lock.MaxAttempts,
			AllowBiometrics:  lock.AllowBiometrics,
			PBKDF2Iterations: lock.PBKDF2Iterations,
			KeyPrefix:        lock.KeyPrefix,
			LockoutDuration:  lock.LockoutDuration,
			AutoLockTimeout:  lock.AutoLockTimeout,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Path returns the config file path from EnvConfigPath or the default
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load reads a configuration file from the given path on top of Default.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault is Load, except that a missing file yields Default
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse parses YAML configuration content on top of Default
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable
// values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func parseDurations(cfg *Config) error {
	var err error

	if cfg.Lock.LockoutDurationRaw != "" {
		cfg.Lock.LockoutDuration, err = time.ParseDuration(cfg.Lock.LockoutDurationRaw)
		if err != nil {
			return fmt.Errorf("parsing lockout_duration %q: %w", cfg.Lock.LockoutDurationRaw, err)
		}
	}

	if cfg.Lock.AutoLockTimeoutRaw != "" {
		cfg.Lock.AutoLockTimeout, err = time.ParseDuration(cfg.Lock.AutoLockTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing auto_lock_timeout %q: %w", cfg.Lock.AutoLockTimeoutRaw, err)
		}
	}

	return nil
}

// Validate checks that all configuration fields are present and valid
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Storage.KeyringService == "" {
		return fmt.Errorf("storage.keyring_service is required")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if err := c.AppLock().Validate(); err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	return nil
}

// AppLock converts the lock section to an applock.Config
func (c *Config) AppLock() applock.Config {
	return applock.Config{
		PinMinLength:     c.Lock.PinMinLength,
		MaxAttempts:      c.Lock.MaxAttempts,
		LockoutDuration:  c.Lock.LockoutDuration,
		AutoLockTimeout:  c.Lock.AutoLockTimeout,
		AllowBiometrics:  c.Lock.AllowBiometrics,
		PBKDF2Iterations: c.Lock.PBKDF2Iterations,
		KeyPrefix:        c.Lock.KeyPrefix,
	}
}
