// Package storage defines the persistence collaborators used by applock
// and provides two implementations.
//
// Two narrow interfaces separate what must stay secret from what may not:
//   - SecretStore: PIN hash, salt, iteration count, biometric flag, integrity key
//   - KeyValueStore: plaintext counters and timestamps (failed attempts,
//     lockout expiry, last activity, counter MAC)
//
// BoltStore keeps the KeyValueStore in a single BBolt bucket. BBolt provides
// ACID transactions, file locking, and corruption detection. MemoryStore
// implements both interfaces in memory and supports error injection.
//
// Reads of a missing key return ErrNotFound. Deleting a missing key is not
// an error.
package storage
