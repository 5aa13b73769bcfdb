// Package lambda implements a client for the Lambda Cloud public API.
package lambda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tscholak/devbox/pkg/types"
	"go.uber.org/zap"
)

// DefaultBaseURL is the production Lambda Cloud API endpoint.
const DefaultBaseURL = "https://cloud.lambda.ai/api/v1"

// Client talks to the Lambda Cloud REST API. The API key is sent as the
// username of an HTTP basic auth header with an empty password.
type Client struct {
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a Lambda Cloud API client.
func NewClient(logger *zap.Logger, baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// envelope is the response wrapper used by every Lambda Cloud endpoint.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// do performs one API request and decodes the data envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Lambda API request",
		zap.String("method", method),
		zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("failed to decode response for %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		if env.Error != nil {
			env.Error.Status = resp.StatusCode
			return env.Error
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode data for %s %s: %w", method, path, err)
		}
	}
	return nil
}

// ListInstances returns all instances on the account.
func (c *Client) ListInstances(ctx context.Context) ([]types.Instance, error) {
	var instances []types.Instance
	if err := c.do(ctx, http.MethodGet, "/instances", nil, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

// GetInstance returns the current snapshot of a single instance.
func (c *Client) GetInstance(ctx context.Context, instanceID string) (*types.Instance, error) {
	var instance types.Instance
	if err := c.do(ctx, http.MethodGet, "/instances/"+instanceID, nil, &instance); err != nil {
		return nil, err
	}
	return &instance, nil
}

// imageSpec selects a launch image by ID in the wire payload.
type imageSpec struct {
	ID string `json:"id"`
}

// launchPayload is the wire form of a launch request.
type launchPayload struct {
	types.LaunchRequest
	Image *imageSpec `json:"image,omitempty"`
}

// LaunchInstance launches one instance and returns the assigned instance IDs.
func (c *Client) LaunchInstance(ctx context.Context, req *types.LaunchRequest) ([]string, error) {
	payload := launchPayload{LaunchRequest: *req}
	if req.ImageID != "" {
		payload.Image = &imageSpec{ID: req.ImageID}
	}

	var result struct {
		InstanceIDs []string `json:"instance_ids"`
	}
	if err := c.do(ctx, http.MethodPost, "/instance-operations/launch", payload, &result); err != nil {
		return nil, err
	}
	return result.InstanceIDs, nil
}

// TerminateInstances terminates the given instances. The operation is
// idempotent upstream; terminating an already-terminated instance is a no-op.
func (c *Client) TerminateInstances(ctx context.Context, instanceIDs []string) ([]types.Instance, error) {
	body := struct {
		InstanceIDs []string `json:"instance_ids"`
	}{InstanceIDs: instanceIDs}

	var result struct {
		TerminatedInstances []types.Instance `json:"terminated_instances"`
	}
	if err := c.do(ctx, http.MethodPost, "/instance-operations/terminate", body, &result); err != nil {
		return nil, err
	}
	return result.TerminatedInstances, nil
}

// RestartInstances restarts the given instances.
func (c *Client) RestartInstances(ctx context.Context, instanceIDs []string) ([]types.Instance, error) {
	body := struct {
		InstanceIDs []string `json:"instance_ids"`
	}{InstanceIDs: instanceIDs}

	var result struct {
		RestartedInstances []types.Instance `json:"restarted_instances"`
	}
	if err := c.do(ctx, http.MethodPost, "/instance-operations/restart", body, &result); err != nil {
		return nil, err
	}
	return result.RestartedInstances, nil
}

// ListInstanceTypes returns all instance type offerings keyed by type name.
func (c *Client) ListInstanceTypes(ctx context.Context) (map[string]types.InstanceTypeOffering, error) {
	var offerings map[string]types.InstanceTypeOffering
	if err := c.do(ctx, http.MethodGet, "/instance-types", nil, &offerings); err != nil {
		return nil, err
	}
	return offerings, nil
}

// ListSSHKeys returns the SSH keys registered on the account.
func (c *Client) ListSSHKeys(ctx context.Context) ([]types.SSHKey, error) {
	var keys []types.SSHKey
	if err := c.do(ctx, http.MethodGet, "/ssh-keys", nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// ListFileSystems returns the persistent filesystems on the account.
func (c *Client) ListFileSystems(ctx context.Context) ([]types.FileSystem, error) {
	var filesystems []types.FileSystem
	if err := c.do(ctx, http.MethodGet, "/file-systems", nil, &filesystems); err != nil {
		return nil, err
	}
	return filesystems, nil
}

// ListFirewallRulesets returns the firewall rulesets on the account.
func (c *Client) ListFirewallRulesets(ctx context.Context) ([]types.FirewallRuleset, error) {
	var rulesets []types.FirewallRuleset
	if err := c.do(ctx, http.MethodGet, "/firewall-rulesets", nil, &rulesets); err != nil {
		return nil, err
	}
	return rulesets, nil
}

// ListImages returns the machine images available for launches.
func (c *Client) ListImages(ctx context.Context) ([]types.Image, error) {
	var images []types.Image
	if err := c.do(ctx, http.MethodGet, "/images", nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}
