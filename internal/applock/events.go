package applock

import (
	"time"

	"github.com/illarion/applock/internal/lockstate"
)

// LockState is the in-memory lock state reported to subscribers
type LockState = lockstate.State

// LockReason says why the app locked
type LockReason string

const (
	ReasonManual     LockReason = "manual"
	ReasonTimeout    LockReason = "timeout"
	ReasonBackground LockReason = "background"
	ReasonLockout    LockReason = "lockout"
)

// UnlockMethod says how the app was unlocked
type UnlockMethod string

const (
	MethodPin       UnlockMethod = "pin"
	MethodBiometric UnlockMethod = "biometric"
	MethodManual    UnlockMethod = "manual"
)

// Event is a discrete App-Lock notification
type Event interface {
	Kind() string
}

// AppLocked is published when the app transitions to locked
type AppLocked struct {
	Reason LockReason
}

// AppUnlocked is published when the app transitions to unlocked
type AppUnlocked struct {
	Method UnlockMethod
}

// UnlockFailed is published for a wrong PIN that did not trigger lockout
type UnlockFailed struct {
	AttemptsRemaining int
}

// LockedOut is published when the failure limit is reached
type LockedOut struct {
	Duration time.Duration
}

// PinChanged is published after a PIN is set or changed
type PinChanged struct {
	IsInitialSetup bool
}

// BiometricSettingChanged is published when biometric unlock is toggled
type BiometricSettingChanged struct {
	Enabled bool
}

func (AppLocked) Kind() string               { return "app_locked" }
func (AppUnlocked) Kind() string             { return "app_unlocked" }
func (UnlockFailed) Kind() string            { return "unlock_failed" }
func (LockedOut) Kind() string               { return "lockout" }
func (PinChanged) Kind() string              { return "pin_changed" }
func (BiometricSettingChanged) Kind() string { return "biometric_setting_changed" }
