package skybrief

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPFunctions resolves tool calls by forwarding them to a remote function
// host instead of running them in process. Each call becomes a POST of the
// decoded arguments to <base>/api/<name>; the response body is returned to
// the run verbatim.
type HTTPFunctions struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFunctions builds a forwarder for the given host base URL.
func NewHTTPFunctions(baseURL string) *HTTPFunctions {
	return &HTTPFunctions{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// Call forwards one function invocation.
func (h *HTTPFunctions) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	if name == "" {
		return "", fmt.Errorf("function name cannot be empty")
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode arguments for %s: %w", name, err)
	}

	url := fmt.Sprintf("%s/api/%s", h.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response from %s: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("function %s returned status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

// Register binds a set of remote function names into a registry so the run
// driver services them transparently.
func (h *HTTPFunctions) Register(registry *FunctionRegistry, names ...string) {
	for _, name := range names {
		name := name
		registry.Register(name, func(ctx context.Context, args map[string]any) (string, error) {
			return h.Call(ctx, name, args)
		})
	}
}

// WithTimeout overrides the forwarding timeout.
func (h *HTTPFunctions) WithTimeout(timeout time.Duration) *HTTPFunctions {
	if timeout > 0 {
		h.client.Timeout = timeout
	}
	return h
}
