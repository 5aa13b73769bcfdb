package orchestrate

import (
	"context"
	"fmt"
	"time"

	"github.com/tscholak/devbox/pkg/types"
	"go.uber.org/zap"
)

// StatusAPI is the remote status operation.
type StatusAPI interface {
	GetInstance(ctx context.Context, instanceID string) (*types.Instance, error)
}

// PollConfig bounds the readiness poll. The interval is fixed: polling is
// cheap and responsiveness matters more than backing off against a resource
// that is known to exist.
type PollConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Validate checks the configuration bounds.
func (c PollConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Interval)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("poll timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Poller waits for a launched instance to become ready.
type Poller struct {
	logger *zap.Logger
	api    StatusAPI
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a poller.
func NewPoller(logger *zap.Logger, api StatusAPI) *Poller {
	return &Poller{
		logger: logger,
		api:    api,
		sleep:  sleepContext,
	}
}

// WaitReady polls the instance at cfg.Interval until it is active with a
// resolved IP. An instance that reaches a terminal status fails immediately
// with *InstanceFailedError; exceeding cfg.Timeout fails with
// *PollTimeoutError carrying the instance ID and last seen status. Status
// fetch failures surface as classified fatal errors. Cancellation of ctx
// interrupts the wait and returns ctx.Err().
func (p *Poller) WaitReady(ctx context.Context, instanceID string, cfg PollConfig) (*types.Instance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid poll config: %w", err)
	}

	lastStatus := types.StatusUnknown
	// Elapsed time is accounted in whole poll intervals so the loop stays
	// deterministic under an injected sleep.
	for elapsed := time.Duration(0); ; elapsed += cfg.Interval {
		instance, err := p.api.GetInstance(ctx, instanceID)
		if err != nil {
			return nil, Classify(err)
		}

		lastStatus = instance.Status
		p.logger.Debug("Polled instance",
			zap.String("instance_id", instanceID),
			zap.String("status", string(instance.Status)),
			zap.String("ip", instance.IP),
			zap.Duration("elapsed", elapsed))

		if instance.Ready() {
			p.logger.Info("Instance ready",
				zap.String("instance_id", instance.ID),
				zap.String("ip", instance.IP),
				zap.Duration("elapsed", elapsed))
			return instance, nil
		}
		if instance.Status.Terminal() {
			return nil, &InstanceFailedError{InstanceID: instanceID, Status: instance.Status}
		}

		if elapsed+cfg.Interval > cfg.Timeout {
			return nil, &PollTimeoutError{
				InstanceID: instanceID,
				Timeout:    cfg.Timeout,
				LastStatus: lastStatus,
			}
		}
		if err := p.sleep(ctx, cfg.Interval); err != nil {
			return nil, err
		}
	}
}
