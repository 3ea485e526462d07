// ABOUTME: Errors shared by the tray implementations
// ABOUTME: Kept free of build tags so callers can match on them
package tray

import "errors"

// ErrUnavailable is returned when the tray cannot be used
var ErrUnavailable = errors.New("system tray unavailable")
