package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize     = 32     // Salt size in bytes
	KeySize      = 32     // Derived key size in bytes
	DefaultIters = 210000 // Default PBKDF2 iterations (OWASP minimum)
)

var (
	ErrInvalidEncoding   = errors.New("invalid base64 encoding")
	ErrInvalidIterations = errors.New("iterations must be positive")
)

// GenerateSalt returns SaltSize random bytes, base64-encoded
func GenerateSalt() (string, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DeriveKey derives a KeySize key from a PIN with PBKDF2-HMAC-SHA256
func DeriveKey(pin string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(pin), salt, iterations, KeySize, sha256.New)
}

// HashPin derives the key for pin and returns it base64-encoded.
// The salt is the base64 string produced by GenerateSalt.
func HashPin(pin, salt string, iterations int) (string, error) {
	if iterations <= 0 {
		return "", ErrInvalidIterations
	}
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", ErrInvalidEncoding
	}
	key := DeriveKey(pin, saltBytes, iterations)
	defer ClearBytes(key)
	return base64.StdEncoding.EncodeToString(key), nil
}

// Verify reports whether pin derives to expectedHash under salt and iterations.
// Any malformed input yields false.
func Verify(pin, salt, expectedHash string, iterations int) bool {
	if iterations <= 0 {
		return false
	}
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil || len(saltBytes) == 0 {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(expectedHash)
	if err != nil || len(expected) != KeySize {
		return false
	}

	key := DeriveKey(pin, saltBytes, iterations)
	defer ClearBytes(key)
	return ConstantTimeCompare(key, expected)
}

// ComputeHMAC returns HMAC-SHA256 of data under key
func ComputeHMAC(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// VerifyHMAC checks mac against HMAC-SHA256 of data under key in constant time
func VerifyHMAC(key, data, mac []byte) bool {
	return ConstantTimeCompare(ComputeHMAC(key, data), mac)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices.
// Slices of different length never match.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
