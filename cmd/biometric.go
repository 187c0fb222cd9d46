package cmd

import (
	"context"
	"fmt"
	"os"
)

// Biometric enables, disables or reports biometric unlock
func Biometric(ctx context.Context, action string) {
	s := OpenSessionOrExit(ctx)

	switch action {
	case "enable":
		s.RequireEnabled()
		if !s.Config.Lock.AllowBiometrics {
			s.Fail("biometric unlock is disabled by configuration")
		}
		ok, err := s.Manager.EnableBiometric(ctx)
		if err != nil {
			s.Close()
			HandleError(err)
		}
		if !ok {
			s.Fail("biometric authentication is not available on this device")
		}
		s.Close()
		fmt.Println("✓ Biometric unlock enabled")
	case "disable":
		ok, err := s.Manager.DisableBiometric(ctx)
		if err != nil {
			s.Close()
			HandleError(err)
		}
		if !ok {
			s.Fail("failed to disable biometric unlock")
		}
		s.Close()
		fmt.Println("✓ Biometric unlock disabled")
	case "status", "":
		enabled, err := s.Manager.IsBiometricEnabled()
		s.Close()
		if err != nil {
			HandleError(err)
		}
		fmt.Printf("Biometric unlock: %s\n", onOff(enabled))
	default:
		s.Close()
		fmt.Fprintf(os.Stderr, "Unknown action: %s\nSupported: enable, disable, status\n", action)
		os.Exit(1)
	}
}
