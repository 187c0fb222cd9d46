package applock

import (
	"errors"
	"strconv"

	"github.com/illarion/applock/internal/crypto"
	"github.com/illarion/applock/internal/storage"
)

// PinCredential is the stored PIN verifier. Salt and Hash are base64.
type PinCredential struct {
	Salt       string
	Hash       string
	Iterations int
}

// newPinCredential derives a credential for pin with a fresh salt
func newPinCredential(pin string, iterations int) (PinCredential, error) {
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return PinCredential{}, err
	}
	hash, err := crypto.HashPin(pin, salt, iterations)
	if err != nil {
		return PinCredential{}, err
	}
	return PinCredential{Salt: salt, Hash: hash, Iterations: iterations}, nil
}

// Matches reports whether pin verifies against the credential
func (c PinCredential) Matches(pin string) bool {
	return crypto.Verify(pin, c.Salt, c.Hash, c.Iterations)
}

// readSecret reads a secret, logging anything other than a missing key
func (m *Manager) readSecret(key string) (string, bool) {
	value, err := m.secrets.ReadSecure(key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn("failed to read secret", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

// loadCredential reads the stored credential. Missing or unreadable
// credentials report false.
func (m *Manager) loadCredential() (PinCredential, bool) {
	hash, ok := m.readSecret(m.keys.pinHash)
	if !ok || hash == "" {
		return PinCredential{}, false
	}
	salt, ok := m.readSecret(m.keys.pinSalt)
	if !ok || salt == "" {
		return PinCredential{}, false
	}

	iterations := m.cfg.PBKDF2Iterations
	raw, err := m.secrets.ReadSecure(m.keys.pinIterations)
	switch {
	case err == nil:
		n, perr := strconv.Atoi(raw)
		if perr != nil {
			m.logger.Warn("invalid stored iteration count", "key", m.keys.pinIterations)
			n = 0 // Verify fails closed
		}
		iterations = n
	case !errors.Is(err, storage.ErrNotFound):
		m.logger.Warn("failed to read secret", "key", m.keys.pinIterations, "error", err)
		return PinCredential{}, false
	}

	return PinCredential{Salt: salt, Hash: hash, Iterations: iterations}, true
}

// storeCredential writes the credential and integrity key. On a failed
// write the previous values are restored so hash and salt never mix.
func (m *Manager) storeCredential(c PinCredential, integrityKey string) error {
	prev, hadPrev := m.loadCredential()
	prevKey, hadPrevKey := m.readSecret(m.keys.integrityKey)

	writes := []struct{ key, value string }{
		{m.keys.pinSalt, c.Salt},
		{m.keys.pinHash, c.Hash},
		{m.keys.pinIterations, strconv.Itoa(c.Iterations)},
		{m.keys.integrityKey, integrityKey},
	}

	for i, w := range writes {
		if err := m.secrets.WriteSecure(w.key, w.value); err != nil {
			m.rollbackCredential(writes[:i], prev, hadPrev, prevKey, hadPrevKey)
			return err
		}
	}
	return nil
}

func (m *Manager) rollbackCredential(written []struct{ key, value string }, prev PinCredential, hadPrev bool, prevKey string, hadPrevKey bool) {
	restore := map[string]string{}
	if hadPrev {
		restore[m.keys.pinSalt] = prev.Salt
		restore[m.keys.pinHash] = prev.Hash
		restore[m.keys.pinIterations] = strconv.Itoa(prev.Iterations)
	}
	if hadPrevKey {
		restore[m.keys.integrityKey] = prevKey
	}

	for _, w := range written {
		var err error
		if old, ok := restore[w.key]; ok {
			err = m.secrets.WriteSecure(w.key, old)
		} else {
			err = m.secrets.DeleteSecure(w.key)
		}
		if err != nil {
			m.logger.Error("failed to roll back credential", "key", w.key, "error", err)
		}
	}
}

// deleteCredential removes every secret the manager owns
func (m *Manager) deleteCredential() {
	for _, key := range []string{
		m.keys.pinHash,
		m.keys.pinSalt,
		m.keys.pinIterations,
		m.keys.biometric,
		m.keys.integrityKey,
	} {
		if err := m.secrets.DeleteSecure(key); err != nil {
			m.logger.Warn("failed to delete secret", "key", key, "error", err)
		}
	}
}
