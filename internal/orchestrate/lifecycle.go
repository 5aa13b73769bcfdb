package orchestrate

import (
	"context"

	"github.com/tscholak/devbox/pkg/types"
	"go.uber.org/zap"
)

// TerminateAPI is the remote terminate operation.
type TerminateAPI interface {
	TerminateInstances(ctx context.Context, instanceIDs []string) ([]types.Instance, error)
}

// RestartAPI is the remote restart operation.
type RestartAPI interface {
	RestartInstances(ctx context.Context, instanceIDs []string) ([]types.Instance, error)
}

// API is the full remote surface the lifecycle needs.
type API interface {
	LaunchAPI
	StatusAPI
	TerminateAPI
	RestartAPI
}

// Lifecycle composes the launcher and poller into the single entry point
// callers use to bring an instance up and ready. A caller never observes an
// instance that launched but has not been confirmed ready.
type Lifecycle struct {
	logger   *zap.Logger
	api      API
	launcher *Launcher
	poller   *Poller
}

// NewLifecycle creates a lifecycle facade. A nil events sink discards
// notifications.
func NewLifecycle(logger *zap.Logger, api API, events Events) *Lifecycle {
	return &Lifecycle{
		logger:   logger,
		api:      api,
		launcher: NewLauncher(logger, api, events),
		poller:   NewPoller(logger, api),
	}
}

// BringUp launches an instance with retry and waits until it is ready. A
// launch failure short-circuits: the poller is never invoked. The first
// terminal failure from either phase passes through unchanged.
func (lc *Lifecycle) BringUp(ctx context.Context, req *types.LaunchRequest, retryCfg RetryConfig, pollCfg PollConfig) (*types.Instance, error) {
	instance, err := lc.launcher.Launch(ctx, req, retryCfg)
	if err != nil {
		return nil, err
	}
	return lc.poller.WaitReady(ctx, instance.ID, pollCfg)
}

// Terminate is a thin passthrough to the remote terminate operation. No
// retry: terminate is idempotent and immediate upstream.
func (lc *Lifecycle) Terminate(ctx context.Context, instanceIDs []string) ([]types.Instance, error) {
	lc.logger.Info("Terminating instances", zap.Strings("instance_ids", instanceIDs))
	return lc.api.TerminateInstances(ctx, instanceIDs)
}

// Restart is a thin passthrough to the remote restart operation. The
// instance keeps its ID and IP; callers who need readiness afterwards
// follow up with WaitReady.
func (lc *Lifecycle) Restart(ctx context.Context, instanceIDs []string) ([]types.Instance, error) {
	lc.logger.Info("Restarting instances", zap.Strings("instance_ids", instanceIDs))
	return lc.api.RestartInstances(ctx, instanceIDs)
}

// WaitReady exposes the readiness poller for instances launched elsewhere.
func (lc *Lifecycle) WaitReady(ctx context.Context, instanceID string, cfg PollConfig) (*types.Instance, error) {
	return lc.poller.WaitReady(ctx, instanceID, cfg)
}
