package cmd

import (
	"context"
	"fmt"
)

// Lock locks immediately
func Lock(ctx context.Context) {
	s := OpenSessionOrExit(ctx)
	s.RequireEnabled()

	if err := s.Manager.LockNow(); err != nil {
		s.Close()
		HandleError(err)
	}
	s.Close()

	fmt.Println("✓ Locked")
}

// Touch records activity so an unlocked session stays unlocked
func Touch(ctx context.Context) {
	s := OpenSessionOrExit(ctx)
	s.RequireEnabled()

	st, err := s.Manager.State()
	if err != nil {
		s.Close()
		HandleError(err)
	}
	if st.Locked {
		s.Fail("app is locked\nRun 'applock unlock' first")
	}
	if err := s.Manager.UpdateLastActivity(); err != nil {
		s.Close()
		HandleError(err)
	}
	s.Close()
}
