package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/applock/internal/crypto"
)

// Passwd changes the PIN
func Passwd(ctx context.Context) {
	s := OpenSessionOrExit(ctx)
	s.RequireEnabled()
	s.RequireUnlocked()

	current, err := ReadPIN("Enter current PIN: ")
	if err != nil {
		s.Close()
		HandleError(err)
	}
	defer crypto.ClearBytes(current)

	newPin, err := ReadPINConfirm("Enter new PIN: ")
	if err != nil {
		s.Close()
		HandleError(err)
	}
	defer crypto.ClearBytes(newPin)

	if len(newPin) < s.Config.Lock.PinMinLength {
		s.Fail("new PIN must be at least %d characters", s.Config.Lock.PinMinLength)
	}

	ok, err := s.Manager.ChangePin(ctx, string(current), string(newPin))
	if err != nil {
		s.Close()
		HandleError(err)
	}
	if !ok {
		s.Fail("wrong PIN")
	}
	s.Close()

	fmt.Println("PIN changed successfully")
}
