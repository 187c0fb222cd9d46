package applock

import "context"

// BiometricCapability is the platform biometric prompt.
// Authenticate returns false, not an error, when the user cancels.
type BiometricCapability interface {
	CanCheckBiometrics(ctx context.Context) bool
	Authenticate(ctx context.Context, reason string) (bool, error)
}

// NoBiometrics is a BiometricCapability for hosts without biometric hardware
type NoBiometrics struct{}

func (NoBiometrics) CanCheckBiometrics(context.Context) bool { return false }

func (NoBiometrics) Authenticate(context.Context, string) (bool, error) { return false, nil }
