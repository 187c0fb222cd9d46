// Package lockstate implements the lock/unlock/lockout state machine.
//
// The machine is pure: every transition takes the current time as an
// argument and nothing in this package reads a clock, arms a timer, or
// touches storage. Persistence and notifications belong to the caller.
//
// States:
//   - Unlocked
//   - Locked
//   - LockedOut: Locked with a lockout expiry
//
// Leaving LockedOut is lazy. ExpireLockout must be called (on the next
// verification or on Restore) for an expired lockout to clear; nothing
// ticks in the background.
package lockstate
