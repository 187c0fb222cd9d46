package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/illarion/applock/internal/applock"
	"github.com/illarion/applock/internal/git"
)

// Status shows the current lock state. Does not require a PIN.
func Status(ctx context.Context) {
	s := OpenSessionOrExit(ctx)
	defer s.Close()

	enabled, err := s.Manager.IsEnabled()
	if err != nil {
		s.Close()
		HandleError(err)
	}
	if !enabled {
		fmt.Println("App lock: disabled")
		fmt.Println("Run 'applock init' to set a PIN")
		return
	}

	st, err := s.Manager.State()
	if err != nil {
		s.Close()
		HandleError(err)
	}
	biometric, _ := s.Manager.IsBiometricEnabled()
	cfg := s.Manager.Config()

	fmt.Println("App lock: enabled")
	fmt.Printf("State: %s\n", st.Status())
	if st.Locked && !st.LockedAt.IsZero() {
		fmt.Printf("Locked at: %s\n", st.LockedAt.Local().Format(time.RFC3339))
	}
	if !st.LastUnlockedAt.IsZero() {
		fmt.Printf("Last unlocked: %s\n", st.LastUnlockedAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("Failed attempts: %d of %d\n", st.FailedAttempts, cfg.MaxAttempts)
	if remaining, err := s.Manager.RemainingLockout(); err == nil && remaining > 0 {
		fmt.Printf("Lockout: %s remaining\n", applock.FormatRemaining(remaining))
	}
	if cfg.AutoLockTimeout > 0 {
		fmt.Printf("Auto-lock after: %s\n", cfg.AutoLockTimeout)
	} else {
		fmt.Println("Auto-lock: off")
	}
	fmt.Printf("Biometric unlock: %s\n", onOff(biometric))

	fmt.Printf("\nSettings: %s", s.Store.Path())
	if created, err := s.Store.Created(); err == nil {
		fmt.Printf(" (created %s)", created.Local().Format(time.RFC3339))
	}
	fmt.Printf("\nKeyring service: %s\n", s.Secrets.Service())
	fmt.Printf("Keyring entry: %s\n", presentMissing(s.Secrets.Has(cfg.PinHashKey())))

	if gs, err := git.CheckFile(ctx, s.Store.Path()); err == nil {
		fmt.Print(git.FormatFileStatus(gs))
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func presentMissing(b bool) string {
	if b {
		return "present"
	}
	return "missing"
}
