package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/applock/internal/applock"
	"github.com/illarion/applock/internal/crypto"
)

// Unlock verifies a PIN and unlocks
func Unlock(ctx context.Context) {
	s := OpenSessionOrExit(ctx)
	s.RequireEnabled()

	if remaining, err := s.Manager.RemainingLockout(); err == nil && remaining > 0 {
		s.Fail("Too many failed attempts. Try again in %s.", applock.FormatRemaining(remaining))
	}

	pin, err := GetPIN("Enter PIN: ")
	if err != nil {
		s.Close()
		HandleError(err)
	}
	defer crypto.ClearBytes(pin)

	res, err := s.Manager.VerifyPin(ctx, string(pin))
	if err != nil {
		s.Close()
		HandleError(err)
	}
	s.Close()

	switch r := res.(type) {
	case applock.VerifySuccess:
		fmt.Println("✓ Unlocked")
	case applock.VerifyFailure:
		fmt.Fprintln(os.Stderr, r.Message)
		os.Exit(1)
	case applock.VerifyLockout:
		fmt.Fprintln(os.Stderr, r.Message)
		os.Exit(1)
	}
}
