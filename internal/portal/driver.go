// Package portal abstracts the remote-UI automation surface used to file
// documents on the SII portal, and provides a go-rod backed implementation.
package portal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Key is a non-text key press.
type Key string

const (
	KeyTab   Key = "Tab"
	KeyEnter Key = "Enter"
	KeySpace Key = "Space"
)

// Driver drives one remote page. Operations are sequential; the remote form is
// a single order-sensitive resource and must not be manipulated concurrently.
// Every blocking operation returns an error matching ErrTimeout when its
// deadline elapses and a *DriverError otherwise.
type Driver interface {
	Open(ctx context.Context) error
	Goto(ctx context.Context, url string) error
	WaitForElement(ctx context.Context, selector string, timeout time.Duration) error
	Focus(ctx context.Context, selector string) error
	TypeText(ctx context.Context, text string) error
	PressKey(ctx context.Context, key Key) error
	Click(ctx context.Context, selector string) error
	Select(ctx context.Context, selector, value string) error
	// Evaluate runs a JS function expression with args and returns its
	// JSON-decoded result (string, bool, float64, []interface{}, map or nil).
	Evaluate(ctx context.Context, script string, args ...interface{}) (interface{}, error)
	// WaitNavigation arms a navigation wait. Trigger the navigation, then call
	// the returned func; it blocks until the page settles or timeout elapses.
	WaitNavigation(ctx context.Context, timeout time.Duration) func() error
	// WaitForSignal waits for event on selector. Losing to the deadline is
	// reported as DeadlineElapsed, not as an error.
	WaitForSignal(ctx context.Context, selector, event string, timeout time.Duration) (WaitOutcome, error)
	Close() error
}

// ErrTimeout marks a remote operation that did not complete in time.
var ErrTimeout = errors.New("portal: timeout")

// DriverError describes a failed remote operation.
type DriverError struct {
	Op     string
	Target string
	Err    error
}

func (e *DriverError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("portal %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("portal %s %s: %v", e.Op, e.Target, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

// Timeout reports whether the error is a driver timeout.
func (e *DriverError) Timeout() bool { return errors.Is(e.Err, ErrTimeout) }

// IsTimeout reports whether err is a driver timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func opError(op, target string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return &DriverError{Op: op, Target: target, Err: err}
}
