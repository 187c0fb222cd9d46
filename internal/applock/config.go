package applock

import (
	"fmt"
	"time"

	"github.com/illarion/applock/internal/crypto"
	"github.com/illarion/applock/internal/lockstate"
)

const DefaultKeyPrefix = "app_lock_"

// Config holds App-Lock policy. A Manager copies it at construction.
type Config struct {
	PinMinLength     int
	MaxAttempts      int
	LockoutDuration  time.Duration
	AutoLockTimeout  time.Duration // zero disables auto-lock
	AllowBiometrics  bool
	PBKDF2Iterations int
	KeyPrefix        string
}

// DefaultConfig returns the default policy
func DefaultConfig() Config {
	return Config{
		PinMinLength:     4,
		MaxAttempts:      5,
		LockoutDuration:  5 * time.Minute,
		AutoLockTimeout:  5 * time.Minute,
		AllowBiometrics:  true,
		PBKDF2Iterations: crypto.DefaultIters,
		KeyPrefix:        DefaultKeyPrefix,
	}
}

// Validate checks that every limit is usable
func (c Config) Validate() error {
	if c.PinMinLength < 1 {
		return fmt.Errorf("pin_min_length must be at least 1, got %d", c.PinMinLength)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.LockoutDuration <= 0 {
		return fmt.Errorf("lockout_duration must be positive, got %s", c.LockoutDuration)
	}
	if c.AutoLockTimeout < 0 {
		return fmt.Errorf("auto_lock_timeout must not be negative, got %s", c.AutoLockTimeout)
	}
	if c.PBKDF2Iterations < 1 {
		return fmt.Errorf("pbkdf2_iterations must be at least 1, got %d", c.PBKDF2Iterations)
	}
	return nil
}

func (c Config) machineConfig() lockstate.Config {
	return lockstate.Config{
		MaxAttempts:     c.MaxAttempts,
		LockoutDuration: c.LockoutDuration,
		AutoLockTimeout: c.AutoLockTimeout,
	}
}

// PinHashKey is the secret store key holding the PIN hash
func (c Config) PinHashKey() string {
	return newStorageKeys(c.KeyPrefix).pinHash
}

// storageKeys is the prefix-scoped key layout
type storageKeys struct {
	// secret store
	pinHash       string
	pinSalt       string
	pinIterations string
	biometric     string
	integrityKey  string

	// key-value store
	failedAttempts string
	lockoutExpires string
	lastActivity   string
	stateMAC       string
}

func newStorageKeys(prefix string) storageKeys {
	return storageKeys{
		pinHash:        prefix + "pin_hash",
		pinSalt:        prefix + "pin_salt",
		pinIterations:  prefix + "pin_iterations",
		biometric:      prefix + "biometric_enabled",
		integrityKey:   prefix + "integrity_key",
		failedAttempts: prefix + "failed_attempts",
		lockoutExpires: prefix + "lockout_expires",
		lastActivity:   prefix + "last_activity",
		stateMAC:       prefix + "state_mac",
	}
}
