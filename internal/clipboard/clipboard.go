// Package clipboard copies citation text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when no copy utility is installed.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Swapped in tests.
var (
	write       = clipboard.WriteAll
	unsupported = func() bool { return clipboard.Unsupported }
)

// IsAvailable reports whether the platform clipboard can be written.
func IsAvailable() bool {
	return !unsupported()
}

// Copy puts text on the system clipboard.
func Copy(text string) error {
	if unsupported() {
		return ErrClipboardUnavailable
	}
	if err := write(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}
