package browser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNavigationTimeout is wrapped by errors returned when a navigation does
// not reach DOMContentLoaded in time.
var ErrNavigationTimeout = errors.New("navigation timeout")

// LaunchError reports that the browser process could not be started.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string { return "launch browser: " + e.Err.Error() }

func (e *LaunchError) Unwrap() error { return e.Err }

// NavigationAbortedError reports that Chrome gave up on a load, which is what
// happens when a redirect hands off to a native app scheme.
type NavigationAbortedError struct {
	Reason string
	URL    string
}

func (e *NavigationAbortedError) Error() string {
	if e.URL == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s at %s", e.Reason, e.URL)
}

// abortReasons are the Chrome net errors treated as an app hand-off.
var abortReasons = []string{"ERR_ABORTED", "ERR_UNKNOWN_URL_SCHEME"}

// IsAbortReason reports whether a Chrome error text signals an aborted load.
func IsAbortReason(errorText string) bool {
	for _, r := range abortReasons {
		if strings.Contains(errorText, r) {
			return true
		}
	}
	return false
}
