package orchestrate

import (
	"time"

	"go.uber.org/zap"
)

// RetryEvent describes one retry transition of the launch loop.
type RetryEvent struct {
	// Attempt is the zero-based attempt that just failed.
	Attempt int
	Delay   time.Duration
	Kind    Kind
	Err     error
}

// Events receives one-way notifications from the launch loop. The
// orchestrator never formats output itself; presentation layers implement
// this interface.
type Events interface {
	RetryScheduled(ev RetryEvent)
	LaunchSucceeded(instanceID string, attempts int)
	LaunchFailed(err error, attempts int)
}

// NopEvents discards all notifications.
type NopEvents struct{}

func (NopEvents) RetryScheduled(RetryEvent)   {}
func (NopEvents) LaunchSucceeded(string, int) {}
func (NopEvents) LaunchFailed(error, int)     {}

// LogEvents forwards notifications to a zap logger.
type LogEvents struct {
	Logger *zap.Logger
}

func (l LogEvents) RetryScheduled(ev RetryEvent) {
	l.Logger.Warn("Launch retry scheduled",
		zap.Int("attempt", ev.Attempt+1),
		zap.Duration("delay", ev.Delay),
		zap.String("kind", ev.Kind.String()),
		zap.Error(ev.Err))
}

func (l LogEvents) LaunchSucceeded(instanceID string, attempts int) {
	l.Logger.Info("Launch succeeded",
		zap.String("instance_id", instanceID),
		zap.Int("attempts", attempts))
}

func (l LogEvents) LaunchFailed(err error, attempts int) {
	l.Logger.Error("Launch failed",
		zap.Int("attempts", attempts),
		zap.Error(err))
}
