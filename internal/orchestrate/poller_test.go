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

type statusResult struct {
	instance *types.Instance
	err      error
}

type fakeStatusAPI struct {
	results []statusResult
	calls   int
}

func (f *fakeStatusAPI) GetInstance(ctx context.Context, instanceID string) (*types.Instance, error) {
	result := f.results[len(f.results)-1]
	if f.calls < len(f.results) {
		result = f.results[f.calls]
	}
	f.calls++
	return result.instance, result.err
}

func snapshot(status types.InstanceStatus, ip string) *types.Instance {
	return &types.Instance{ID: "i-abc123", Status: status, IP: ip}
}

func testPollConfig() PollConfig {
	return PollConfig{Interval: time.Second, Timeout: 10 * time.Second}
}

// newTestPoller wires a poller whose interval waits are recorded instead of
// slept.
func newTestPoller(t *testing.T, api StatusAPI) (*Poller, *[]time.Duration) {
	poller := NewPoller(zaptest.NewLogger(t), api)
	var slept []time.Duration
	poller.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return poller, &slept
}

func TestPoller_ReturnsWhenActiveWithIP(t *testing.T) {
	api := &fakeStatusAPI{results: []statusResult{
		{instance: snapshot(types.StatusBooting, "")},
		{instance: snapshot(types.StatusBooting, "")},
		{instance: snapshot(types.StatusActive, "203.0.113.7")},
	}}
	poller, slept := newTestPoller(t, api)

	instance, err := poller.WaitReady(context.Background(), "i-abc123", testPollConfig())
	require.NoError(t, err)

	assert.Equal(t, "i-abc123", instance.ID)
	assert.Equal(t, types.StatusActive, instance.Status)
	assert.Equal(t, "203.0.113.7", instance.IP)
	assert.Equal(t, 3, api.calls)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, *slept, "fixed interval, no growth")
}

func TestPoller_ActiveWithoutIPKeepsPolling(t *testing.T) {
	api := &fakeStatusAPI{results: []statusResult{
		{instance: snapshot(types.StatusActive, "")},
		{instance: snapshot(types.StatusActive, "203.0.113.7")},
	}}
	poller, _ := newTestPoller(t, api)

	instance, err := poller.WaitReady(context.Background(), "i-abc123", testPollConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls, "active without an IP is not ready")
	assert.Equal(t, "203.0.113.7", instance.IP)
}

func TestPoller_TimesOutWhileBooting(t *testing.T) {
	api := &fakeStatusAPI{results: []statusResult{
		{instance: snapshot(types.StatusBooting, "")},
	}}
	poller, _ := newTestPoller(t, api)

	cfg := PollConfig{Interval: time.Second, Timeout: 3 * time.Second}
	_, err := poller.WaitReady(context.Background(), "i-abc123", cfg)

	var timeout *PollTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, "i-abc123", timeout.InstanceID, "instance id preserved for manual recovery")
	assert.Equal(t, types.StatusBooting, timeout.LastStatus)
	assert.Equal(t, 3*time.Second, timeout.Timeout)
}

func TestPoller_TerminatedFailsImmediately(t *testing.T) {
	api := &fakeStatusAPI{results: []statusResult{
		{instance: snapshot(types.StatusBooting, "")},
		{instance: snapshot(types.StatusTerminated, "")},
	}}
	poller, slept := newTestPoller(t, api)

	cfg := PollConfig{Interval: time.Second, Timeout: time.Hour}
	_, err := poller.WaitReady(context.Background(), "i-abc123", cfg)

	var failed *InstanceFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "i-abc123", failed.InstanceID)
	assert.Equal(t, types.StatusTerminated, failed.Status)
	assert.Equal(t, 2, api.calls, "no waiting out the remaining budget")
	assert.Len(t, *slept, 1)
}

func TestPoller_UnhealthyFailsImmediately(t *testing.T) {
	api := &fakeStatusAPI{results: []statusResult{
		{instance: snapshot(types.StatusUnhealthy, "")},
	}}
	poller, _ := newTestPoller(t, api)

	_, err := poller.WaitReady(context.Background(), "i-abc123", testPollConfig())

	var failed *InstanceFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, types.StatusUnhealthy, failed.Status)
}

func TestPoller_StatusFetchErrorIsClassifiedFatal(t *testing.T) {
	api := &fakeStatusAPI{results: []statusResult{
		{err: &lambda.APIError{Status: 404, Code: lambda.CodeObjectDoesNotExist, Message: "no such instance"}},
	}}
	poller, _ := newTestPoller(t, api)

	_, err := poller.WaitReady(context.Background(), "i-abc123", testPollConfig())

	var classified *ClassifiedError
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, KindNotFound, classified.Kind)
	assert.Equal(t, 1, api.calls)
}

func TestPoller_CancellationInterruptsWait(t *testing.T) {
	api := &fakeStatusAPI{results: []statusResult{
		{instance: snapshot(types.StatusBooting, "")},
	}}
	poller := NewPoller(zaptest.NewLogger(t), api)

	ctx, cancel := context.WithCancel(context.Background())
	poller.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	}

	_, err := poller.WaitReady(ctx, "i-abc123", testPollConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoller_InvalidConfigIsRejected(t *testing.T) {
	api := &fakeStatusAPI{results: []statusResult{{instance: snapshot(types.StatusActive, "203.0.113.7")}}}
	poller, _ := newTestPoller(t, api)

	_, err := poller.WaitReady(context.Background(), "i-abc123", PollConfig{Interval: 0, Timeout: time.Minute})
	assert.Error(t, err)
	assert.Equal(t, 0, api.calls)
}
