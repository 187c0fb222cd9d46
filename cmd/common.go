package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/illarion/applock/internal/applock"
	"github.com/illarion/applock/internal/config"
	"github.com/illarion/applock/internal/crypto"
	"github.com/illarion/applock/internal/keyring"
	"github.com/illarion/applock/internal/logging"
	"github.com/illarion/applock/internal/storage"
)

// ErrNotEnabled is returned by commands that need a PIN when none is set
var ErrNotEnabled = errors.New("app lock not enabled")

// ErrLocked is returned by commands that need the app unlocked
var ErrLocked = errors.New("app is locked")

// Session is one CLI invocation's view of the app lock
type Session struct {
	Config  *config.Config
	Store   *storage.BoltStore
	Secrets *keyring.Store
	Manager *applock.Manager
	Logger  *slog.Logger

	watchDone chan struct{}
}

// OpenSession loads the config, opens both stores and initializes the manager
func OpenSession(ctx context.Context) (*Session, error) {
	cfg, err := config.LoadOrDefault(config.Path())
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	secrets := keyring.New(cfg.Storage.KeyringService)

	mgr, err := applock.New(cfg.AppLock(), secrets, store, applock.NoBiometrics{}, applock.WithLogger(logger))
	if err != nil {
		store.Close()
		return nil, err
	}

	s := &Session{
		Config:    cfg,
		Store:     store,
		Secrets:   secrets,
		Manager:   mgr,
		Logger:    logger,
		watchDone: make(chan struct{}),
	}

	// Subscribe before Initialize so no event is missed
	events, _ := mgr.OnLockEvents(ctx)
	go s.watch(events)

	if err := mgr.Initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// OpenSessionOrExit is like OpenSession but exits on error
func OpenSessionOrExit(ctx context.Context) *Session {
	s, err := OpenSession(ctx)
	if err != nil {
		HandleError(err)
	}
	return s
}

func (s *Session) watch(events <-chan applock.Event) {
	defer close(s.watchDone)
	for ev := range events {
		s.Logger.Info("lock event", "kind", ev.Kind(), "detail", fmt.Sprintf("%+v", ev))
	}
}

// Close disposes the manager, waits for pending events to be logged and
// closes the settings database
func (s *Session) Close() {
	s.Manager.Dispose()
	<-s.watchDone
	if err := s.Store.Close(); err != nil {
		s.Logger.Warn("failed to close settings store", "error", err)
	}
}

// RequireEnabled exits unless a PIN is set
func (s *Session) RequireEnabled() {
	enabled, err := s.Manager.IsEnabled()
	if err != nil {
		s.Close()
		HandleError(err)
	}
	if !enabled {
		s.Close()
		HandleError(ErrNotEnabled)
	}
}

// RequireUnlocked exits unless the app is unlocked
func (s *Session) RequireUnlocked() {
	st, err := s.Manager.State()
	if err != nil {
		s.Close()
		HandleError(err)
	}
	if st.Locked {
		s.Close()
		HandleError(ErrLocked)
	}
}

// Authorize returns once the app is unlocked. A locked app asks for the PIN,
// which counts toward the lockout like any other attempt.
func (s *Session) Authorize(ctx context.Context) {
	st, err := s.Manager.State()
	if err != nil {
		s.Close()
		HandleError(err)
	}
	if !st.Locked {
		return
	}
	if remaining, err := s.Manager.RemainingLockout(); err == nil && remaining > 0 {
		s.Fail("Too many failed attempts. Try again in %s.", applock.FormatRemaining(remaining))
	}

	pin, err := GetPIN("Enter PIN: ")
	if err != nil {
		s.Close()
		HandleError(err)
	}
	res, err := s.Manager.VerifyPin(ctx, string(pin))
	crypto.ClearBytes(pin)
	if err != nil {
		s.Close()
		HandleError(err)
	}

	switch r := res.(type) {
	case applock.VerifyFailure:
		s.Fail("%s", r.Message)
	case applock.VerifyLockout:
		s.Fail("%s", r.Message)
	}
}

// Fail closes the session and exits with an error message
func (s *Session) Fail(format string, args ...any) {
	s.Close()
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// HandleError handles common errors consistently
func HandleError(err error) {
	switch {
	case errors.Is(err, ErrNotEnabled):
		fmt.Fprintf(os.Stderr, "Error: app lock not enabled\n")
		fmt.Fprintf(os.Stderr, "Run 'applock init' to set a PIN\n")
	case errors.Is(err, ErrLocked):
		fmt.Fprintf(os.Stderr, "Error: app is locked\n")
		fmt.Fprintf(os.Stderr, "Run 'applock unlock' first\n")
	case errors.Is(err, applock.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: app lock failed to load its state\n")
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(os.Stderr, "Error: interrupted\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}
