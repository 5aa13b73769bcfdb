package orchestrate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tscholak/devbox/internal/lambda"
	"github.com/tscholak/devbox/pkg/types"
	"go.uber.org/zap/zaptest"
)

type fakeAPI struct {
	launch       *fakeLaunchAPI
	status       *fakeStatusAPI
	terminated   []string
	terminateErr error
	restarted    []string
	restartErr   error
}

func (f *fakeAPI) LaunchInstance(ctx context.Context, req *types.LaunchRequest) ([]string, error) {
	return f.launch.LaunchInstance(ctx, req)
}

func (f *fakeAPI) GetInstance(ctx context.Context, instanceID string) (*types.Instance, error) {
	return f.status.GetInstance(ctx, instanceID)
}

func (f *fakeAPI) TerminateInstances(ctx context.Context, instanceIDs []string) ([]types.Instance, error) {
	f.terminated = append(f.terminated, instanceIDs...)
	if f.terminateErr != nil {
		return nil, f.terminateErr
	}
	instances := make([]types.Instance, 0, len(instanceIDs))
	for _, id := range instanceIDs {
		instances = append(instances, types.Instance{ID: id, Status: types.StatusTerminated})
	}
	return instances, nil
}

func (f *fakeAPI) RestartInstances(ctx context.Context, instanceIDs []string) ([]types.Instance, error) {
	f.restarted = append(f.restarted, instanceIDs...)
	if f.restartErr != nil {
		return nil, f.restartErr
	}
	instances := make([]types.Instance, 0, len(instanceIDs))
	for _, id := range instanceIDs {
		instances = append(instances, types.Instance{ID: id, Status: types.StatusBooting})
	}
	return instances, nil
}

// newTestLifecycle wires a lifecycle whose waits are recorded instead of slept.
func newTestLifecycle(t *testing.T, api *fakeAPI) *Lifecycle {
	lifecycle := NewLifecycle(zaptest.NewLogger(t), api, nil)
	noSleep := func(ctx context.Context, d time.Duration) error { return nil }
	lifecycle.launcher.sleep = noSleep
	lifecycle.poller.sleep = noSleep
	return lifecycle
}

func TestLifecycle_BringUpHappyPath(t *testing.T) {
	api := &fakeAPI{
		launch: &fakeLaunchAPI{results: []launchResult{
			{err: capacityError()},
			{ids: []string{"i-abc123"}},
		}},
		status: &fakeStatusAPI{results: []statusResult{
			{instance: snapshot(types.StatusBooting, "")},
			{instance: snapshot(types.StatusActive, "203.0.113.7")},
		}},
	}
	lifecycle := newTestLifecycle(t, api)

	instance, err := lifecycle.BringUp(context.Background(), &types.LaunchRequest{}, testRetryConfig(), testPollConfig())
	require.NoError(t, err)

	assert.Equal(t, "i-abc123", instance.ID)
	assert.True(t, instance.Ready())
	assert.Equal(t, 2, api.launch.calls)
	assert.Equal(t, 2, api.status.calls)
}

func TestLifecycle_LaunchFailureSkipsPolling(t *testing.T) {
	api := &fakeAPI{
		launch: &fakeLaunchAPI{results: []launchResult{
			{err: &lambda.APIError{Status: 403, Code: lambda.CodeQuotaExceeded, Message: "quota exceeded"}},
		}},
		status: &fakeStatusAPI{results: []statusResult{
			{instance: snapshot(types.StatusActive, "203.0.113.7")},
		}},
	}
	lifecycle := newTestLifecycle(t, api)

	_, err := lifecycle.BringUp(context.Background(), &types.LaunchRequest{}, testRetryConfig(), testPollConfig())

	var classified *ClassifiedError
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, KindQuota, classified.Kind)
	assert.Equal(t, 0, api.status.calls, "poller never invoked after a launch failure")
}

func TestLifecycle_PollTimeoutCarriesLaunchedInstanceID(t *testing.T) {
	api := &fakeAPI{
		launch: &fakeLaunchAPI{results: []launchResult{{ids: []string{"i-abc123"}}}},
		status: &fakeStatusAPI{results: []statusResult{
			{instance: snapshot(types.StatusBooting, "")},
		}},
	}
	lifecycle := newTestLifecycle(t, api)

	cfg := PollConfig{Interval: time.Second, Timeout: 3 * time.Second}
	_, err := lifecycle.BringUp(context.Background(), &types.LaunchRequest{}, testRetryConfig(), cfg)

	var timeout *PollTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, "i-abc123", timeout.InstanceID, "caller can still recover the instance")
}

func TestLifecycle_TerminatePassesThrough(t *testing.T) {
	api := &fakeAPI{
		launch: &fakeLaunchAPI{},
		status: &fakeStatusAPI{},
	}
	lifecycle := newTestLifecycle(t, api)

	terminated, err := lifecycle.Terminate(context.Background(), []string{"i-1", "i-2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"i-1", "i-2"}, api.terminated)
	require.Len(t, terminated, 2)
	assert.Equal(t, types.StatusTerminated, terminated[0].Status)
}

func TestLifecycle_TerminateSurfacesRemoteError(t *testing.T) {
	api := &fakeAPI{
		launch:       &fakeLaunchAPI{},
		status:       &fakeStatusAPI{},
		terminateErr: &lambda.APIError{Status: 404, Code: lambda.CodeObjectDoesNotExist, Message: "no such instance"},
	}
	lifecycle := newTestLifecycle(t, api)

	_, err := lifecycle.Terminate(context.Background(), []string{"i-gone"})
	require.Error(t, err)

	var apiErr *lambda.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, lambda.CodeObjectDoesNotExist, apiErr.Code)
}

func TestLifecycle_RestartPassesThrough(t *testing.T) {
	api := &fakeAPI{
		launch: &fakeLaunchAPI{},
		status: &fakeStatusAPI{},
	}
	lifecycle := newTestLifecycle(t, api)

	restarted, err := lifecycle.Restart(context.Background(), []string{"i-1", "i-2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"i-1", "i-2"}, api.restarted)
	require.Len(t, restarted, 2)
	assert.Equal(t, types.StatusBooting, restarted[0].Status)
}

func TestLifecycle_RestartSurfacesRemoteError(t *testing.T) {
	api := &fakeAPI{
		launch:     &fakeLaunchAPI{},
		status:     &fakeStatusAPI{},
		restartErr: &lambda.APIError{Status: 404, Code: lambda.CodeObjectDoesNotExist, Message: "no such instance"},
	}
	lifecycle := newTestLifecycle(t, api)

	_, err := lifecycle.Restart(context.Background(), []string{"i-gone"})
	require.Error(t, err)

	var apiErr *lambda.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, lambda.CodeObjectDoesNotExist, apiErr.Code)
}

func TestLifecycle_WaitReadyExposesPoller(t *testing.T) {
	api := &fakeAPI{
		launch: &fakeLaunchAPI{},
		status: &fakeStatusAPI{results: []statusResult{
			{instance: snapshot(types.StatusActive, "203.0.113.7")},
		}},
	}
	lifecycle := newTestLifecycle(t, api)

	instance, err := lifecycle.WaitReady(context.Background(), "i-abc123", testPollConfig())
	require.NoError(t, err)
	assert.True(t, instance.Ready())
}
