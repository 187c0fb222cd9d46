package applock

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/illarion/applock/internal/broadcast"
	"github.com/illarion/applock/internal/crypto"
	"github.com/illarion/applock/internal/lockstate"
	"github.com/illarion/applock/internal/storage"
)

const (
	biometricEnabledValue = "true"
	enableBiometricReason = "Confirm your identity to enable biometric unlock"
	unlockBiometricReason = "Unlock the app"
)

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces the system clock, mainly for tests
func WithClock(clock Clock) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// Manager owns the lock state and coordinates crypto, storage, timers
// and notifications.
type Manager struct {
	cfg      Config
	keys     storageKeys
	secrets  storage.SecretStore
	settings storage.KeyValueStore
	bio      BiometricCapability
	clock    Clock
	logger   *slog.Logger

	mu           sync.Mutex
	initialized  bool
	disposed     bool
	hasPin       bool
	integrityKey []byte
	machine      *lockstate.Machine
	lastActivity time.Time
	timer        Timer
	timerGen     uint64

	stateChanges *broadcast.Broadcaster[LockState]
	events       *broadcast.Broadcaster[Event]
}

// New creates a Manager. bio may be nil on hosts without biometrics.
func New(cfg Config, secrets storage.SecretStore, settings storage.KeyValueStore, bio BiometricCapability, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if secrets == nil || settings == nil {
		return nil, fmt.Errorf("secret store and settings store are required")
	}
	if bio == nil {
		bio = NoBiometrics{}
	}

	m := &Manager{
		cfg:      cfg,
		keys:     newStorageKeys(cfg.KeyPrefix),
		secrets:  secrets,
		settings: settings,
		bio:      bio,
		clock:    systemClock{},
		logger:   slog.Default(),
		machine:  lockstate.New(cfg.machineConfig()),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "applock")
	m.stateChanges = broadcast.New[LockState]("lock_state", 0, m.logger)
	m.events = broadcast.New[Event]("lock_events", 0, m.logger)
	return m, nil
}

// Config returns the policy the manager was built with
func (m *Manager) Config() Config {
	return m.cfg
}

// Initialize loads persisted state. Calling it again is a no-op.
func (m *Manager) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	_, m.hasPin = m.loadCredential()
	if m.hasPin {
		m.integrityKey = m.loadIntegrityKey()
	}

	now := m.clock.Now()
	persisted, tampered := m.loadPersisted(now)
	expired := m.machine.Restore(persisted, now)
	m.lastActivity = persisted.LastActivity
	if m.machine.State().Locked {
		m.lastActivity = time.Time{}
	}
	if expired || tampered {
		m.persistCounters()
	}

	m.initialized = true
	if m.machine.Status() == lockstate.StatusUnlocked {
		m.armTimerLocked()
	}

	m.logger.Debug("initialized",
		"enabled", m.hasPin,
		"status", m.machine.Status().String(),
		"failed_attempts", m.machine.State().FailedAttempts)
	return nil
}

// IsEnabled reports whether a PIN is set. Storage errors report false.
func (m *Manager) IsEnabled() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return false, ErrNotInitialized
	}
	_, ok := m.loadCredential()
	return ok, nil
}

// IsBiometricEnabled reports whether biometric unlock is switched on
func (m *Manager) IsBiometricEnabled() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return false, ErrNotInitialized
	}
	return m.biometricFlagLocked(), nil
}

// State returns a snapshot of the lock state
func (m *Manager) State() (LockState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return LockState{}, ErrNotInitialized
	}
	return m.machine.State(), nil
}

// RemainingLockout returns how long an active lockout still lasts
func (m *Manager) RemainingLockout() (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return 0, ErrNotInitialized
	}
	return m.machine.State().RemainingLockout(m.clock.Now()), nil
}

// SetPin stores a new PIN and unlocks. Returns false without changing
// anything if the PIN is too short, cannot be stored, or a PIN is already
// set and the app is locked.
func (m *Manager) SetPin(ctx context.Context, pin string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return false, ErrNotInitialized
	}
	if m.hasPin && m.machine.State().Locked {
		m.logger.Debug("pin rejected", "reason", "locked")
		return false, nil
	}
	return m.setPinLocked(pin, true), nil
}

// ChangePin replaces the PIN after verifying oldPin. It only runs while
// unlocked, since a wrong oldPin is not counted as a failed attempt.
// A locked app, a wrong oldPin or a too-short newPin returns false and
// changes nothing.
func (m *Manager) ChangePin(ctx context.Context, oldPin, newPin string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return false, ErrNotInitialized
	}
	if len(newPin) < m.cfg.PinMinLength {
		return false, nil
	}
	if m.machine.State().Locked {
		m.logger.Debug("pin change rejected", "reason", "locked")
		return false, nil
	}

	cred, ok := m.loadCredential()
	if !ok || !cred.Matches(oldPin) {
		return false, nil
	}
	return m.setPinLocked(newPin, false), nil
}

func (m *Manager) setPinLocked(pin string, initial bool) bool {
	if len(pin) < m.cfg.PinMinLength {
		m.logger.Debug("pin rejected", "reason", "too short")
		return false
	}

	cred, err := newPinCredential(pin, m.cfg.PBKDF2Iterations)
	if err != nil {
		m.logger.Warn("failed to derive pin credential", "error", err)
		return false
	}
	integrityKey, err := crypto.GenerateRandom(crypto.KeySize)
	if err != nil {
		m.logger.Warn("failed to generate integrity key", "error", err)
		return false
	}
	if err := m.storeCredential(cred, base64.StdEncoding.EncodeToString(integrityKey)); err != nil {
		m.logger.Warn("failed to store pin credential", "error", err)
		return false
	}

	now := m.clock.Now()
	m.hasPin = true
	m.integrityKey = integrityKey
	m.machine.RecordSuccess(now)
	m.lastActivity = now
	m.persistCounters()
	m.armTimerLocked()

	m.publishStateLocked()
	m.publishEvent(PinChanged{IsInitialSetup: initial})
	return true
}

// VerifyPin checks pin and applies the lockout policy. An unexpired
// lockout is reported without consuming an attempt.
func (m *Manager) VerifyPin(ctx context.Context, pin string) (VerifyResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, ErrNotInitialized
	}

	now := m.clock.Now()
	if m.machine.LockoutActive(now) {
		remaining := m.machine.State().RemainingLockout(now)
		return VerifyLockout{LockoutDuration: remaining, Message: lockoutMessage(remaining)}, nil
	}
	if m.machine.ExpireLockout(now) {
		m.logger.Debug("lockout expired")
		m.persistCounters()
		m.publishStateLocked()
	}

	cred, ok := m.loadCredential()
	if !ok {
		return VerifyFailure{
			AttemptsRemaining: m.machine.AttemptsRemaining(),
			Message:           "PIN could not be checked.",
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wasLocked := m.machine.State().Locked
	if cred.Matches(pin) {
		m.machine.RecordSuccess(now)
		m.lastActivity = now
		m.persistCounters()
		m.armTimerLocked()
		m.publishStateLocked()
		if wasLocked {
			m.publishEvent(AppUnlocked{Method: MethodPin})
		}
		return VerifySuccess{}, nil
	}

	outcome := m.machine.RecordFailure(now)
	if outcome.LockedOut {
		m.cancelTimerLocked()
		m.lastActivity = time.Time{}
	}
	m.persistCounters()
	m.publishStateLocked()

	if !outcome.LockedOut {
		m.publishEvent(UnlockFailed{AttemptsRemaining: outcome.AttemptsRemaining})
		return VerifyFailure{
			AttemptsRemaining: outcome.AttemptsRemaining,
			Message:           failureMessage(outcome.AttemptsRemaining),
		}, nil
	}

	m.logger.Info("lockout started", "duration", outcome.LockoutDuration)
	if !wasLocked {
		m.publishEvent(AppLocked{Reason: ReasonLockout})
	}
	m.publishEvent(LockedOut{Duration: outcome.LockoutDuration})
	return VerifyLockout{
		LockoutDuration: outcome.LockoutDuration,
		Message:         lockoutMessage(outcome.LockoutDuration),
	}, nil
}

// EnableBiometric switches biometric unlock on after one successful
// biometric challenge. Returns false, changing nothing, if biometrics are
// disallowed, unsupported, denied or cancelled, or no PIN is set.
func (m *Manager) EnableBiometric(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return false, ErrNotInitialized
	}
	if !m.cfg.AllowBiometrics || !m.hasPin {
		m.mu.Unlock()
		return false, nil
	}
	if m.biometricFlagLocked() {
		m.mu.Unlock()
		return true, nil
	}
	m.mu.Unlock()

	// The prompt may block on the user; the lock is not held meanwhile
	if !m.challengeBiometric(ctx, enableBiometricReason) {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.secrets.WriteSecure(m.keys.biometric, biometricEnabledValue); err != nil {
		m.logger.Warn("failed to persist biometric flag", "error", err)
		return false, nil
	}
	m.publishEvent(BiometricSettingChanged{Enabled: true})
	return true, nil
}

// DisableBiometric switches biometric unlock off
func (m *Manager) DisableBiometric(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return false, ErrNotInitialized
	}
	if !m.biometricFlagLocked() {
		return true, nil
	}
	if err := m.secrets.DeleteSecure(m.keys.biometric); err != nil {
		m.logger.Warn("failed to clear biometric flag", "error", err)
		return false, nil
	}
	m.publishEvent(BiometricSettingChanged{Enabled: false})
	return true, nil
}

// AuthenticateBiometric prompts for biometrics and unlocks on success.
// Returns false if biometric unlock is off, a lockout is active, or the
// prompt fails or is cancelled.
func (m *Manager) AuthenticateBiometric(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return false, ErrNotInitialized
	}
	if !m.cfg.AllowBiometrics || !m.biometricFlagLocked() || m.machine.LockoutActive(m.clock.Now()) {
		m.mu.Unlock()
		return false, nil
	}
	m.mu.Unlock()

	if !m.challengeBiometric(ctx, unlockBiometricReason) {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if m.machine.LockoutActive(now) {
		return false, nil
	}
	m.machine.ExpireLockout(now)
	m.unlockLocked(now, MethodBiometric)
	return true, nil
}

func (m *Manager) challengeBiometric(ctx context.Context, reason string) bool {
	if !m.bio.CanCheckBiometrics(ctx) {
		m.logger.Debug("biometrics unavailable")
		return false
	}
	ok, err := m.bio.Authenticate(ctx, reason)
	if err != nil {
		m.logger.Warn("biometric authentication failed", "error", err)
		return false
	}
	return ok
}

func (m *Manager) biometricFlagLocked() bool {
	v, ok := m.readSecret(m.keys.biometric)
	return ok && v == biometricEnabledValue
}

// LockNow locks the app. No-op if already locked or no PIN is set.
func (m *Manager) LockNow() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	m.lockLocked(ReasonManual)
	return nil
}

// HandleBackground locks the app when it leaves the foreground
func (m *Manager) HandleBackground() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	m.lockLocked(ReasonBackground)
	return nil
}

// HandleResume locks the app if the inactivity timeout passed while it
// was in the background
func (m *Manager) HandleResume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	if m.machine.ShouldAutoLock(m.lastActivity, m.clock.Now()) {
		m.lockLocked(ReasonTimeout)
	}
	return nil
}

func (m *Manager) lockLocked(reason LockReason) {
	if !m.hasPin {
		return
	}
	if !m.machine.Lock(m.clock.Now()) {
		return
	}
	m.cancelTimerLocked()
	m.lastActivity = time.Time{}
	m.persistCounters()

	m.logger.Debug("locked", "reason", string(reason))
	m.publishStateLocked()
	m.publishEvent(AppLocked{Reason: reason})
}

// Unlock unlocks without a PIN, for callers that authenticated by other
// means. Returns false if an unexpired lockout is in force.
func (m *Manager) Unlock() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return false, ErrNotInitialized
	}

	now := m.clock.Now()
	if m.machine.LockoutActive(now) {
		return false, nil
	}
	m.machine.ExpireLockout(now)
	m.unlockLocked(now, MethodManual)
	return true, nil
}

func (m *Manager) unlockLocked(now time.Time, method UnlockMethod) {
	if !m.machine.Unlock(now) {
		return
	}
	m.lastActivity = now
	m.persistCounters()
	m.armTimerLocked()

	m.publishStateLocked()
	m.publishEvent(AppUnlocked{Method: method})
}

// UpdateLastActivity records user activity and restarts the auto-lock
// timer. Ignored while locked.
func (m *Manager) UpdateLastActivity() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	if m.machine.State().Locked {
		return nil
	}
	m.lastActivity = m.clock.Now()
	if m.hasPin {
		m.persistCounters()
	}
	m.armTimerLocked()
	return nil
}

// Reset deletes the PIN and biometric flag and unlocks. With keepConfig
// false the persisted counters are deleted too.
func (m *Manager) Reset(keepConfig bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}

	m.deleteCredential()
	if !keepConfig {
		m.clearCounters()
	}

	m.cancelTimerLocked()
	if m.integrityKey != nil {
		crypto.ClearBytes(m.integrityKey)
	}
	m.integrityKey = nil
	m.hasPin = false
	m.lastActivity = time.Time{}
	m.machine.Reset()

	m.logger.Info("app lock reset", "keep_config", keepConfig)
	m.publishStateLocked()
	return nil
}

// OnLockStateChanged subscribes to LockState changes until ctx is done
func (m *Manager) OnLockStateChanged(ctx context.Context) (<-chan LockState, string) {
	return m.stateChanges.Subscribe(ctx)
}

// OnLockEvents subscribes to lock events until ctx is done
func (m *Manager) OnLockEvents(ctx context.Context) (<-chan Event, string) {
	return m.events.Subscribe(ctx)
}

// Unsubscribe ends a subscription made by either On* method
func (m *Manager) Unsubscribe(subID string) {
	m.stateChanges.Unsubscribe(subID)
	m.events.Unsubscribe(subID)
}

// Dispose cancels the auto-lock timer and closes both channels.
// Operations already running complete normally.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return
	}
	m.disposed = true
	m.cancelTimerLocked()
	m.stateChanges.Close()
	m.events.Close()
}

func (m *Manager) publishStateLocked() {
	m.stateChanges.Publish(m.machine.State())
}

func (m *Manager) publishEvent(ev Event) {
	m.events.Publish(ev)
}

// armTimerLocked (re)starts the single-shot auto-lock timer
func (m *Manager) armTimerLocked() {
	m.cancelTimerLocked()
	if m.disposed || !m.hasPin || m.cfg.AutoLockTimeout <= 0 {
		return
	}
	gen := m.timerGen
	m.timer = m.clock.AfterFunc(m.cfg.AutoLockTimeout, func() {
		m.onAutoLock(gen)
	})
}

func (m *Manager) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.timerGen++
}

func (m *Manager) onAutoLock(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A newer timer or Dispose superseded this one
	if gen != m.timerGen || m.disposed {
		return
	}
	m.timer = nil
	m.lockLocked(ReasonTimeout)
}
