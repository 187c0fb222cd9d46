// Package applock provides the App-Lock manager: PIN setup and
// verification, lock/unlock/lockout handling, auto-lock on inactivity,
// and biometric unlock as a fallback.
//
// A Manager is constructed explicitly with its collaborators:
//   - storage.SecretStore for the PIN credential and biometric flag
//   - storage.KeyValueStore for failure counters and timestamps
//   - BiometricCapability for the platform biometric prompt
//
// Initialize must be called once before any other operation; calls made
// earlier return ErrNotInitialized. Storage and crypto failures never
// surface as errors: they are logged and reported as false or a failed
// VerifyResult, so an outage leaves the app locked rather than crashing.
//
// Two independent channels report changes:
//   - OnLockStateChanged: every LockState change, for re-rendering
//   - OnLockEvents: discrete events such as UnlockFailed, which may occur
//     without a state transition
//
// A Manager assumes one logical caller and one instance per storage
// namespace. Callers must not submit overlapping VerifyPin calls.
package applock
