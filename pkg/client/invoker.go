package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Invoker is the generic remote call primitive: one service, one action, one
// JSON payload, one JSON result decoded into out.
type Invoker interface {
	Invoke(ctx context.Context, serviceID, action string, payload, out any) error
}

// InvokerFunc adapts a function into an Invoker.
type InvokerFunc func(ctx context.Context, serviceID, action string, payload, out any) error

// Invoke delegates to the underlying function.
func (fn InvokerFunc) Invoke(ctx context.Context, serviceID, action string, payload, out any) error {
	return fn(ctx, serviceID, action, payload, out)
}

// RemoteError is a failure reported by the backend. Message is user-facing
// and shown verbatim.
type RemoteError struct {
	Status  int
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("client: %s: remote status %d: %s", e.Action, e.Status, e.Message)
	}
	return fmt.Sprintf("client: remote status %d: %s", e.Status, e.Message)
}

// PublicMessage returns the backend's message.
func (e *RemoteError) PublicMessage() string {
	return e.Message
}

const maxErrorBody = 64 << 10

// HTTPInvoker posts `{"action": ..., "payload": ...}` to {base}/{serviceID}.
type HTTPInvoker struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
	header  http.Header
}

// HTTPOption configures an HTTPInvoker.
type HTTPOption func(*HTTPInvoker)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTPInvoker) {
		if client != nil {
			h.client = client
		}
	}
}

// WithTimeout bounds every call. Zero disables the bound.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(h *HTTPInvoker) {
		h.timeout = timeout
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) HTTPOption {
	return func(h *HTTPInvoker) {
		h.header.Add(key, value)
	}
}

// NewHTTPInvoker validates baseURL and builds an invoker.
func NewHTTPInvoker(baseURL string, opts ...HTTPOption) (*HTTPInvoker, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("client: base url %q must be http or https", baseURL)
	}
	h := &HTTPInvoker{
		base:   parsed,
		client: http.DefaultClient,
		header: make(http.Header),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

type envelope struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Invoke performs one call.
func (h *HTTPInvoker) Invoke(ctx context.Context, serviceID, action string, payload, out any) error {
	if strings.TrimSpace(serviceID) == "" {
		return errors.New("client: service id is required")
	}
	body, err := json.Marshal(envelope{Action: action, Payload: payload})
	if err != nil {
		return fmt.Errorf("client: %s: encode payload: %w", action, err)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	endpoint := h.base.JoinPath(serviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("client: %s: build request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range h.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s: %w", action, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RemoteError{Status: resp.StatusCode, Action: action, Message: remoteMessage(resp, raw)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: %s: decode result: %w", action, err)
	}
	return nil
}

func remoteMessage(resp *http.Response, raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
