package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jorgeai/leadflow/types"
)

// HTTPConfig configures the REST client.
type HTTPConfig struct {
	// BaseURL is the CRM API root, without a trailing slash.
	BaseURL string `yaml:"base_url" json:"base_url"`
	// APIKey is sent as a bearer token.
	APIKey string `yaml:"api_key" json:"api_key"`
	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultHTTPConfig returns the standard client settings.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{Timeout: 10 * time.Second}
}

// HTTPClient talks to the CRM REST API.
type HTTPClient struct {
	cfg    HTTPConfig
	http   *http.Client
	logger *zap.Logger
}

// NewHTTPClient creates a REST client.
func NewHTTPClient(cfg HTTPConfig, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHTTPConfig().Timeout
	}
	return &HTTPClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("component", "crm_client")),
	}
}

func (c *HTTPClient) AddTag(ctx context.Context, contactID, tag string) error {
	path := fmt.Sprintf("/contacts/%s/tags", contactID)
	return c.do(ctx, http.MethodPost, path, map[string]any{"tags": []string{tag}})
}

func (c *HTTPClient) RemoveTag(ctx context.Context, contactID, tag string) error {
	path := fmt.Sprintf("/contacts/%s/tags/%s", contactID, tag)
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *HTTPClient) UpdateCustomField(ctx context.Context, contactID, field, value string) error {
	path := fmt.Sprintf("/contacts/%s", contactID)
	body := map[string]any{
		"customFields": []map[string]string{{"id": field, "value": value}},
	}
	return c.do(ctx, http.MethodPut, path, body)
}

func (c *HTTPClient) TriggerWorkflow(ctx context.Context, contactID, workflowID string) error {
	path := fmt.Sprintf("/contacts/%s/workflow/%s", contactID, workflowID)
	return c.do(ctx, http.MethodPost, path, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return types.NewError(types.ErrEmitFailed, "crm request failed").
			WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return types.NewError(types.ErrEmitFailed,
			fmt.Sprintf("crm returned %d for %s %s", resp.StatusCode, method, path)).
			WithRetryable(true)
	default:
		return types.NewError(types.ErrEmitFailed,
			fmt.Sprintf("crm rejected %s %s with %d", method, path, resp.StatusCode))
	}
}
