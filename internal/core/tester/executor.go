package tester

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Octrafic/qakit/internal/core/auth"
	"github.com/Octrafic/qakit/internal/infra/logger"
)

// DefaultHealthTimeout bounds the health check
const DefaultHealthTimeout = 5 * time.Second

// ErrUnexpectedStatus is returned by Health for any non-200 answer
var ErrUnexpectedStatus = errors.New("unexpected status")

type TestResult struct {
	StatusCode   int
	ResponseBody string
	Duration     time.Duration
	Error        error
}

// Request is one call to replay against the server
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    any
}

type Executor struct {
	baseURL      string
	client       *http.Client
	authProvider auth.AuthProvider
}

// NewExecutor builds an executor for baseURL. A zero timeout means requests
// are bounded only by their context.
func NewExecutor(baseURL string, authProvider auth.AuthProvider, timeout time.Duration) *Executor {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Executor{
		baseURL:      strings.TrimRight(baseURL, "/"),
		authProvider: authProvider,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the normalized base URL
func (e *Executor) BaseURL() string {
	return e.baseURL
}

// Client exposes the HTTP client so the auth exchange shares its settings
func (e *Executor) Client() *http.Client {
	return e.client
}

// UpdateAuthProvider updates the authentication provider
func (e *Executor) UpdateAuthProvider(authProvider auth.AuthProvider) {
	e.authProvider = authProvider
}

// ShouldAttachAuth decides whether the session header goes on a request.
// Any non-health path receives the header regardless of method.
func ShouldAttachAuth(authPresent bool, method, path string) bool {
	return (authPresent && !strings.EqualFold(method, http.MethodGet)) || !strings.Contains(path, "health")
}

// Health performs GET <base><path> with its own timeout. Only 200 is healthy.
func (e *Executor) Health(ctx context.Context, path string, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		timeout = DefaultHealthTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func (e *Executor) ExecuteTest(ctx context.Context, r Request) (*TestResult, error) {
	startTime := time.Now()

	fullURL := e.baseURL + r.Path

	var reqBody io.Reader
	if r.Body != nil {
		jsonBody, err := json.Marshal(r.Body)
		if err != nil {
			return &TestResult{Error: fmt.Errorf("failed to marshal body: %w", err)}, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, fullURL, reqBody)
	if err != nil {
		return &TestResult{Error: fmt.Errorf("failed to create request: %w", err)}, err
	}

	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	path, _, _ := strings.Cut(r.Path, "?")
	if e.authProvider != nil && ShouldAttachAuth(auth.IsAuthenticated(e.authProvider), r.Method, path) {
		if err := e.authProvider.Apply(req); err != nil {
			return &TestResult{Error: fmt.Errorf("failed to apply auth: %w", err)}, err
		}
	}

	resp, err := e.client.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		return &TestResult{
			Duration: duration,
			Error:    fmt.Errorf("request failed: %w", err),
		}, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TestResult{
			StatusCode: resp.StatusCode,
			Duration:   duration,
			Error:      fmt.Errorf("failed to read response: %w", err),
		}, err
	}

	logger.Debug("Request executed",
		logger.String("method", r.Method),
		logger.String("path", r.Path),
		logger.Int("status", resp.StatusCode),
		logger.Duration("duration", duration))

	return &TestResult{
		StatusCode:   resp.StatusCode,
		ResponseBody: string(respBody),
		Duration:     duration,
	}, nil
}
