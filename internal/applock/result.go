package applock

import (
	"fmt"
	"time"
)

// VerifyResult is the outcome of VerifyPin: VerifySuccess, VerifyFailure or VerifyLockout
type VerifyResult interface {
	OK() bool
}

// VerifySuccess means the PIN matched
type VerifySuccess struct{}

// VerifyFailure means the PIN did not match, or could not be checked
type VerifyFailure struct {
	AttemptsRemaining int
	Message           string
}

// VerifyLockout means verification is refused until the lockout ends
type VerifyLockout struct {
	LockoutDuration time.Duration
	Message         string
}

func (VerifySuccess) OK() bool { return true }
func (VerifyFailure) OK() bool { return false }
func (VerifyLockout) OK() bool { return false }

func failureMessage(remaining int) string {
	if remaining == 1 {
		return "Incorrect PIN. 1 attempt remaining."
	}
	return fmt.Sprintf("Incorrect PIN. %d attempts remaining.", remaining)
}

func lockoutMessage(remaining time.Duration) string {
	return fmt.Sprintf("Too many failed attempts. Try again in %s.", FormatRemaining(remaining))
}

// FormatRemaining renders a countdown such as "4m 59s" or "1h 2m 3s".
// Partial seconds round up so a live lockout never shows "0s".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	secs := int64((d + time.Second - 1) / time.Second)
	h, m, s := secs/3600, (secs%3600)/60, secs%60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
