package lockstate

import "time"

// Status is the coarse state of the machine
type Status int

const (
	StatusUnlocked Status = iota
	StatusLocked
	StatusLockedOut
)

func (s Status) String() string {
	switch s {
	case StatusUnlocked:
		return "unlocked"
	case StatusLocked:
		return "locked"
	case StatusLockedOut:
		return "locked out"
	default:
		return "unknown"
	}
}

// Config holds the limits the machine enforces
type Config struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	// AutoLockTimeout <= 0 disables inactivity locking
	AutoLockTimeout time.Duration
}

// State is the in-memory lock state. Zero times mean "not set".
type State struct {
	Locked           bool
	LockedAt         time.Time
	FailedAttempts   int
	IsLockedOut      bool
	LockoutExpiresAt time.Time
	LastUnlockedAt   time.Time
}

// Status derives the coarse status from the state
func (s State) Status() Status {
	switch {
	case s.IsLockedOut:
		return StatusLockedOut
	case s.Locked:
		return StatusLocked
	default:
		return StatusUnlocked
	}
}

// RemainingLockout returns how long the lockout still lasts at now, or zero
func (s State) RemainingLockout(now time.Time) time.Duration {
	if !s.IsLockedOut {
		return 0
	}
	if d := s.LockoutExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Persisted is the recoverable subset of state read back at startup
type Persisted struct {
	HasCredential    bool
	FailedAttempts   int
	LockoutExpiresAt time.Time
	LastActivity     time.Time
}

// FailureOutcome describes the effect of one failed verification
type FailureOutcome struct {
	AttemptsRemaining int
	LockedOut         bool
	LockoutDuration   time.Duration
}

// Machine applies transitions to a State
type Machine struct {
	cfg   Config
	state State
}

// New creates an Unlocked machine
func New(cfg Config) *Machine {
	return &Machine{cfg: cfg}
}

// State returns a copy of the current state
func (m *Machine) State() State {
	return m.state
}

// Status returns the coarse status
func (m *Machine) Status() Status {
	return m.state.Status()
}

// AttemptsRemaining returns how many failures are left before lockout
func (m *Machine) AttemptsRemaining() int {
	if r := m.cfg.MaxAttempts - m.state.FailedAttempts; r > 0 {
		return r
	}
	return 0
}

// LockoutActive reports whether a lockout is in force at now.
// An expired lockout still counts as inactive even before ExpireLockout runs.
func (m *Machine) LockoutActive(now time.Time) bool {
	return m.state.IsLockedOut && now.Before(m.state.LockoutExpiresAt)
}

// Lock moves Unlocked to Locked. Returns false if already locked.
func (m *Machine) Lock(now time.Time) bool {
	if m.state.Locked {
		return false
	}
	m.state.Locked = true
	m.state.LockedAt = now
	return true
}

// Unlock moves Locked to Unlocked and clears failures.
// Returns false if already unlocked or an unexpired lockout is in force.
func (m *Machine) Unlock(now time.Time) bool {
	if !m.state.Locked || m.LockoutActive(now) {
		return false
	}
	m.RecordSuccess(now)
	return true
}

// ExpireLockout clears a lockout whose expiry has passed, leaving the
// machine Locked with zero failures. Returns true if a lockout was cleared.
func (m *Machine) ExpireLockout(now time.Time) bool {
	if !m.state.IsLockedOut || now.Before(m.state.LockoutExpiresAt) {
		return false
	}
	m.state.IsLockedOut = false
	m.state.LockoutExpiresAt = time.Time{}
	m.state.FailedAttempts = 0
	m.state.Locked = true
	if m.state.LockedAt.IsZero() {
		m.state.LockedAt = now
	}
	return true
}

// RecordFailure counts a failed verification. Reaching MaxAttempts
// enters LockedOut until now+LockoutDuration.
func (m *Machine) RecordFailure(now time.Time) FailureOutcome {
	m.state.FailedAttempts++
	if m.state.FailedAttempts < m.cfg.MaxAttempts {
		return FailureOutcome{AttemptsRemaining: m.AttemptsRemaining()}
	}

	m.state.IsLockedOut = true
	m.state.LockoutExpiresAt = now.Add(m.cfg.LockoutDuration)
	if !m.state.Locked {
		m.state.Locked = true
		m.state.LockedAt = now
	}
	return FailureOutcome{
		LockedOut:       true,
		LockoutDuration: m.cfg.LockoutDuration,
	}
}

// RecordSuccess records a successful verification: Unlocked, zero failures
func (m *Machine) RecordSuccess(now time.Time) {
	m.state = State{LastUnlockedAt: now}
}

// Reset forces Unlocked with every counter cleared
func (m *Machine) Reset() {
	m.state = State{}
}

// Restore rebuilds state from persisted fields at startup.
// Order of precedence: no credential is Unlocked, an unexpired lockout is
// LockedOut, an expired lockout is Locked, then inactivity decides between
// Locked and Unlocked. Unknown activity with a credential is Locked.
// Returns true if a persisted lockout was found already expired.
func (m *Machine) Restore(p Persisted, now time.Time) bool {
	if !p.HasCredential {
		m.state = State{}
		return false
	}

	if !p.LockoutExpiresAt.IsZero() {
		if now.Before(p.LockoutExpiresAt) {
			failed := p.FailedAttempts
			if failed < m.cfg.MaxAttempts {
				failed = m.cfg.MaxAttempts
			}
			m.state = State{
				Locked:           true,
				LockedAt:         now,
				FailedAttempts:   failed,
				IsLockedOut:      true,
				LockoutExpiresAt: p.LockoutExpiresAt,
			}
			return false
		}
		m.state = State{Locked: true, LockedAt: now}
		return true
	}

	failed := p.FailedAttempts
	if failed < 0 {
		failed = 0
	}

	if p.LastActivity.IsZero() || m.inactive(p.LastActivity, now) {
		m.state = State{Locked: true, LockedAt: now, FailedAttempts: failed}
		return false
	}

	m.state = State{FailedAttempts: failed, LastUnlockedAt: p.LastActivity}
	return false
}

// ShouldAutoLock reports whether lastActivity is older than the timeout at now
func (m *Machine) ShouldAutoLock(lastActivity, now time.Time) bool {
	return !m.state.Locked && !lastActivity.IsZero() && m.inactive(lastActivity, now)
}

func (m *Machine) inactive(lastActivity, now time.Time) bool {
	if m.cfg.AutoLockTimeout <= 0 {
		return false
	}
	return now.Sub(lastActivity) > m.cfg.AutoLockTimeout
}
