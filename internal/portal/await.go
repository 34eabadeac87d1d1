package portal

import (
	"context"
	"time"
)

// WaitOutcome is the winner of a signal-versus-deadline race.
type WaitOutcome int

const (
	Signaled WaitOutcome = iota + 1
	DeadlineElapsed
)

func (o WaitOutcome) String() string {
	switch o {
	case Signaled:
		return "signaled"
	case DeadlineElapsed:
		return "deadline elapsed"
	default:
		return "unknown"
	}
}

// AwaitSignalOrDeadline races signal against a timer of duration d.
//
// signal runs in its own goroutine with a context that is cancelled as soon as
// the race is decided, so a losing signal never outlives the call. A signal
// error is returned as is; a cancelled parent returns ctx.Err().
func AwaitSignalOrDeadline(ctx context.Context, d time.Duration, signal func(context.Context) error) (WaitOutcome, error) {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- signal(waitCtx) }()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, err
		}
		return Signaled, nil
	case <-timer.C:
		return DeadlineElapsed, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// awaitOrTimeout is AwaitSignalOrDeadline for waits whose deadline is fatal.
func awaitOrTimeout(ctx context.Context, op, target string, d time.Duration, signal func(context.Context) error) error {
	outcome, err := AwaitSignalOrDeadline(ctx, d, signal)
	if err != nil {
		return opError(op, target, err)
	}
	if outcome == DeadlineElapsed {
		return &DriverError{Op: op, Target: target, Err: ErrTimeout}
	}
	return nil
}
