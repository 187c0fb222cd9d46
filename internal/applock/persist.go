package applock

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/illarion/applock/internal/crypto"
	"github.com/illarion/applock/internal/lockstate"
	"github.com/illarion/applock/internal/storage"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func counterMACInput(failed int, lockoutExpires, lastActivity string) []byte {
	return []byte(fmt.Sprintf("%d|%s|%s", failed, lockoutExpires, lastActivity))
}

// readSetting reads a plaintext value. ok is false only on a storage error.
func (m *Manager) readSetting(key string) (value string, ok bool) {
	value, err := m.settings.Read(key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", true
	}
	if err != nil {
		m.logger.Warn("failed to read setting", "key", key, "error", err)
		return "", false
	}
	return value, true
}

// loadIntegrityKey reads the counter MAC key, or nil when absent
func (m *Manager) loadIntegrityKey() []byte {
	raw, ok := m.readSecret(m.keys.integrityKey)
	if !ok {
		return nil
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		m.logger.Warn("invalid integrity key encoding", "key", m.keys.integrityKey)
		return nil
	}
	return key
}

// loadPersisted reads the recoverable counters. A credential with counters
// that fail the integrity check loads as a fresh lockout starting at now.
func (m *Manager) loadPersisted(now time.Time) (lockstate.Persisted, bool) {
	p := lockstate.Persisted{HasCredential: m.hasPin}
	if !m.hasPin {
		return p, false
	}

	readable := true
	failed, err := m.settings.ReadInt(m.keys.failedAttempts)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		failed = 0
	case err != nil:
		m.logger.Warn("failed to read setting", "key", m.keys.failedAttempts, "error", err)
		failed = 0
		readable = false
	}
	lockoutRaw, ok := m.readSetting(m.keys.lockoutExpires)
	readable = readable && ok
	activityRaw, ok := m.readSetting(m.keys.lastActivity)
	readable = readable && ok

	if !readable {
		// Unknown activity restores as Locked
		return lockstate.Persisted{HasCredential: true, FailedAttempts: failed}, false
	}

	tampered := false
	if m.integrityKey != nil {
		tampered = !m.countersIntact(failed, lockoutRaw, activityRaw)
	}

	if lockoutRaw != "" {
		t, err := time.Parse(time.RFC3339Nano, lockoutRaw)
		if err != nil {
			m.logger.Warn("invalid lockout timestamp", "key", m.keys.lockoutExpires)
			tampered = true
		}
		p.LockoutExpiresAt = t
	}
	if activityRaw != "" {
		if t, err := time.Parse(time.RFC3339Nano, activityRaw); err == nil {
			p.LastActivity = t
		} else {
			m.logger.Warn("invalid activity timestamp", "key", m.keys.lastActivity)
		}
	}
	p.FailedAttempts = failed

	if tampered {
		m.logger.Warn("lock counters failed integrity check, starting lockout")
		return lockstate.Persisted{
			HasCredential:    true,
			FailedAttempts:   m.cfg.MaxAttempts,
			LockoutExpiresAt: now.Add(m.cfg.LockoutDuration),
		}, true
	}
	return p, false
}

func (m *Manager) countersIntact(failed int, lockoutRaw, activityRaw string) bool {
	raw, ok := m.readSetting(m.keys.stateMAC)
	if !ok {
		return true // unreadable, not evidence of tampering
	}
	if raw == "" {
		return false
	}
	mac, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return false
	}
	return crypto.VerifyHMAC(m.integrityKey, counterMACInput(failed, lockoutRaw, activityRaw), mac)
}

// persistCounters writes failed attempts, lockout expiry and last activity.
// Failures are logged and reported as false.
func (m *Manager) persistCounters() bool {
	st := m.machine.State()
	lockoutRaw := ""
	if st.IsLockedOut {
		lockoutRaw = formatTime(st.LockoutExpiresAt)
	}
	activityRaw := formatTime(m.lastActivity)

	ok := true
	if err := m.settings.WriteInt(m.keys.failedAttempts, st.FailedAttempts); err != nil {
		m.logger.Warn("failed to persist setting", "key", m.keys.failedAttempts, "error", err)
		ok = false
	}
	ok = m.writeOrDelete(m.keys.lockoutExpires, lockoutRaw) && ok
	ok = m.writeOrDelete(m.keys.lastActivity, activityRaw) && ok

	if m.integrityKey != nil {
		mac := crypto.ComputeHMAC(m.integrityKey, counterMACInput(st.FailedAttempts, lockoutRaw, activityRaw))
		ok = m.writeOrDelete(m.keys.stateMAC, base64.StdEncoding.EncodeToString(mac)) && ok
	}
	return ok
}

// clearCounters deletes every persisted counter
func (m *Manager) clearCounters() {
	for _, key := range []string{
		m.keys.failedAttempts,
		m.keys.lockoutExpires,
		m.keys.lastActivity,
		m.keys.stateMAC,
	} {
		if err := m.settings.Delete(key); err != nil {
			m.logger.Warn("failed to delete setting", "key", key, "error", err)
		}
	}
}

func (m *Manager) writeOrDelete(key, value string) bool {
	var err error
	if value == "" {
		err = m.settings.Delete(key)
	} else {
		err = m.settings.Write(key, value)
	}
	if err != nil {
		m.logger.Warn("failed to persist setting", "key", key, "error", err)
		return false
	}
	return true
}
