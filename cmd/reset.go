package cmd

import (
	"context"
	"fmt"
	"os"
)

// Reset removes the PIN and biometric setting. A locked app must be unlocked
// with the PIN first. Unless keepConfig is set the
// failure and activity counters are cleared and the settings database is
// compacted.
func Reset(ctx context.Context, keepConfig, force bool) {
	s := OpenSessionOrExit(ctx)
	s.Authorize(ctx)

	if !force && !Confirm("Remove the PIN and disable app lock?") {
		s.Close()
		fmt.Println("Aborted")
		return
	}

	if err := s.Manager.Reset(keepConfig); err != nil {
		s.Close()
		HandleError(err)
	}

	if !keepConfig {
		if err := s.Store.Compact(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: compaction failed: %s\n", err)
		}
	}
	s.Close()

	fmt.Println("✓ App lock reset")
}
