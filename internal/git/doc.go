// Package git checks whether the applock settings database is exposed to git.
//
// The settings database holds the failure counters and lockout expiry.
// A committed copy can be checked out later to roll those counters back,
// so the file should be ignored, never tracked.
package git
