package applock

import "errors"

// ErrNotInitialized is returned by every Manager operation called before Initialize
var ErrNotInitialized = errors.New("applock: manager not initialized")
