// Package clip provides read access to the system clipboard.
//
// The daemon only ever reads: captured text flows outward to the store, and
// writing the clipboard stays a CLI convenience outside the capture path.
// System() selects the golang.design/x/clipboard backend when a display
// environment is available and a headless stub otherwise.
package clip

import "errors"

// Expected read failures. Both mean "the environment currently refuses
// clipboard access"; callers retry on the next poll without logging.
var (
	// ErrPermissionDenied means clipboard access was refused by the host.
	ErrPermissionDenied = errors.New("clipboard permission denied")

	// ErrSecurityRestricted means no clipboard is reachable at all
	// (headless session, no display server).
	ErrSecurityRestricted = errors.New("clipboard unavailable in this environment")
)

// Source is a readable clipboard.
type Source interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard text. An empty string with a nil
	// error means the clipboard holds no text.
	Read() (string, error)

	// Close releases any resources held by the backend.
	Close()
}

// IsExpected reports whether err is one of the suppressed read failures
// (permission or security restriction) that resolve themselves over time.
func IsExpected(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrSecurityRestricted)
}
