// Package orchestrate drives launch attempts against scarce Lambda Cloud
// capacity: it retries capacity shortages with exponential backoff, fails
// fast on everything else, and polls a launched instance until it is ready.
package orchestrate

import (
	"context"
	"fmt"
	"time"

	"github.com/tscholak/devbox/pkg/types"
	"go.uber.org/zap"
)

// LaunchAPI is the remote launch operation.
type LaunchAPI interface {
	LaunchInstance(ctx context.Context, req *types.LaunchRequest) ([]string, error)
}

// Launcher retries instance launches until success, a fatal error, or
// exhaustion of the attempt budget. It holds no state between calls; the
// attempt counter and current delay live on the stack of one Launch call.
type Launcher struct {
	logger *zap.Logger
	api    LaunchAPI
	events Events
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewLauncher creates a launcher. A nil events sink discards notifications.
func NewLauncher(logger *zap.Logger, api LaunchAPI, events Events) *Launcher {
	if events == nil {
		events = NopEvents{}
	}
	return &Launcher{
		logger: logger,
		api:    api,
		events: events,
		sleep:  sleepContext,
	}
}

// Launch performs up to cfg.MaxAttempts+1 launch calls for req. Capacity
// errors back off and retry; any other failure surfaces immediately as a
// *ClassifiedError. A persistent capacity shortage surfaces as a
// *RetriesExhaustedError. Cancellation of ctx interrupts the backoff wait
// and returns ctx.Err().
func (l *Launcher) Launch(ctx context.Context, req *types.LaunchRequest, cfg RetryConfig) (*types.Instance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}

	for attempt := 0; ; attempt++ {
		instanceIDs, err := l.api.LaunchInstance(ctx, req)
		if err == nil {
			if len(instanceIDs) == 0 {
				return nil, fmt.Errorf("launch returned no instance ids")
			}
			instance := &types.Instance{
				ID:           instanceIDs[0],
				Name:         req.Name,
				Status:       types.StatusBooting,
				Region:       types.Region{Name: req.RegionName},
				InstanceType: types.InstanceType{Name: req.InstanceTypeName},
			}
			l.logger.Info("Instance launched",
				zap.String("instance_id", instance.ID),
				zap.String("instance_type", req.InstanceTypeName),
				zap.String("region", req.RegionName),
				zap.Int("attempts", attempt+1))
			l.events.LaunchSucceeded(instance.ID, attempt+1)
			return instance, nil
		}

		classified := Classify(err)
		if !classified.Retryable {
			l.logger.Error("Launch failed",
				zap.String("kind", classified.Kind.String()),
				zap.Error(classified))
			l.events.LaunchFailed(classified, attempt+1)
			return nil, classified
		}

		if attempt >= cfg.MaxAttempts {
			exhausted := &RetriesExhaustedError{Attempts: attempt + 1, Last: classified}
			l.logger.Error("Launch attempts exhausted",
				zap.Int("attempts", exhausted.Attempts),
				zap.Error(classified))
			l.events.LaunchFailed(exhausted, attempt+1)
			return nil, exhausted
		}

		delay := NextDelay(attempt, cfg)
		l.logger.Warn("No capacity, backing off",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(classified))
		l.events.RetryScheduled(RetryEvent{
			Attempt: attempt,
			Delay:   delay,
			Kind:    classified.Kind,
			Err:     classified,
		})

		if err := l.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// sleepContext waits for d or until ctx is cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
