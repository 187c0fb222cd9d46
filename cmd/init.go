package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/applock/internal/crypto"
)

// Init sets the first PIN
func Init(ctx context.Context) {
	s := OpenSessionOrExit(ctx)

	enabled, err := s.Manager.IsEnabled()
	if err != nil {
		s.Close()
		HandleError(err)
	}
	if enabled {
		s.Fail("a PIN is already set\nUse 'applock passwd' to change it")
	}

	pin, err := GetNewPIN("Enter new PIN: ")
	if err != nil {
		s.Close()
		HandleError(err)
	}
	defer crypto.ClearBytes(pin)

	ok, err := s.Manager.SetPin(ctx, string(pin))
	if err != nil {
		s.Close()
		HandleError(err)
	}
	if !ok {
		s.Fail("PIN not set: it must be at least %d characters", s.Config.Lock.PinMinLength)
	}
	s.Close()

	fmt.Println("✓ App lock enabled")
}
