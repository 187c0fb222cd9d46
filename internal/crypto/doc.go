// Package crypto provides the PIN hashing primitives for applock.
//
// Key derivation uses PBKDF2-HMAC-SHA256 with:
//   - 32-byte random salt from crypto/rand, stored base64-encoded
//   - 32-byte derived key, stored base64-encoded
//   - 210,000 iterations by default (OWASP minimum)
//
// Verification recomputes the key and compares it in constant time.
// Malformed stored values (bad base64, wrong length, zero iterations)
// make Verify return false instead of an error.
//
// Memory safety:
//   - Use ClearBytes() to zero derived keys and decoded secrets after use
package crypto
