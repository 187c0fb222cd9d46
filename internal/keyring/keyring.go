// Package keyring implements storage.SecretStore on top of the OS keyring
// (macOS Keychain, Windows Credential Manager, Secret Service on Linux).
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/illarion/applock/internal/storage"
)

// DefaultService is the keyring service name used when none is configured
const DefaultService = "applock"

// Store keeps secrets as keyring entries under one service name
type Store struct {
	service string
}

// New creates a Store for the given service name
func New(service string) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service}
}

// Service returns the keyring service name
func (s *Store) Service() string {
	return s.service
}

// ReadSecure retrieves a secret from the OS keyring
func (s *Store) ReadSecure(key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s from keyring: %w", key, err)
	}
	return value, nil
}

// WriteSecure stores a secret in the OS keyring
func (s *Store) WriteSecure(key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("failed to write %s to keyring: %w", key, err)
	}
	return nil
}

// DeleteSecure removes a secret from the OS keyring
func (s *Store) DeleteSecure(key string) error {
	err := keyring.Delete(s.service, key)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
}

// Has checks if a secret is stored in the keyring
func (s *Store) Has(key string) bool {
	_, err := keyring.Get(s.service, key)
	return err == nil
}
