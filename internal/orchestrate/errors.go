package orchestrate

import (
	"fmt"
	"time"

	"github.com/tscholak/devbox/pkg/types"
)

// RetriesExhaustedError reports a capacity error that persisted past the
// configured attempt ceiling. Last carries the final classified failure.
type RetriesExhaustedError struct {
	Attempts int
	Last     *ClassifiedError
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("no capacity after %d attempts: %s", e.Attempts, e.Last.Error())
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }

// PollTimeoutError reports an instance that launched but never became ready
// within the polling window. The instance ID is preserved so callers can
// still recover (or terminate) the instance manually.
type PollTimeoutError struct {
	InstanceID string
	Timeout    time.Duration
	LastStatus types.InstanceStatus
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("instance %s not ready within %s (last status: %s)",
		e.InstanceID, e.Timeout, e.LastStatus)
}

// InstanceFailedError reports an instance that entered a state it cannot
// become ready from while being polled.
type InstanceFailedError struct {
	InstanceID string
	Status     types.InstanceStatus
}

func (e *InstanceFailedError) Error() string {
	return fmt.Sprintf("instance %s will never become ready: status is %s", e.InstanceID, e.Status)
}
