package storage

import "errors"

var ErrNotFound = errors.New("key not found")

// SecretStore holds values that must be encrypted at rest
type SecretStore interface {
	ReadSecure(key string) (string, error)
	WriteSecure(key, value string) error
	DeleteSecure(key string) error
}

// KeyValueStore holds plaintext settings, counters and timestamps
type KeyValueStore interface {
	Read(key string) (string, error)
	Write(key, value string) error
	Delete(key string) error
	ReadInt(key string) (int, error)
	WriteInt(key string, value int) error
}
