package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Octrafic/qakit/internal/infra/logger"
	"github.com/tidwall/gjson"
)

// tokenPath locates the session token in a successful login response
const tokenPath = "data.token"

// Credentials identify the test account
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Session runs the login/register exchange against the API under test
type Session struct {
	baseURL      string
	loginPath    string
	registerPath string
	creds        Credentials
	client       *http.Client
}

func NewSession(baseURL, loginPath, registerPath string, creds Credentials, client *http.Client) *Session {
	if client == nil {
		client = http.DefaultClient
	}
	return &Session{
		baseURL:      strings.TrimRight(baseURL, "/"),
		loginPath:    loginPath,
		registerPath: registerPath,
		creds:        creds,
		client:       client,
	}
}

// Outcome describes how the exchange ended. Provider is never nil: it is a
// *BearerAuth on success and *NoAuth otherwise, with Reason saying why.
type Outcome struct {
	Email       string
	Provider    AuthProvider
	Registered  bool
	LoginStatus int
	Reason      string
}

// Authenticated reports whether a token was obtained
func (o *Outcome) Authenticated() bool {
	return IsAuthenticated(o.Provider)
}

// Acquire logs in with the configured credentials. A 401 triggers one
// registration attempt; when that succeeds the login is retried once.
// Failures never return an error: the run continues unauthenticated.
func (s *Session) Acquire(ctx context.Context) *Outcome {
	out := &Outcome{Email: s.creds.Email, Provider: &NoAuth{}}

	login := map[string]string{"email": s.creds.Email, "password": s.creds.Password}

	status, body, err := s.postJSON(ctx, s.loginPath, login)
	if err != nil {
		out.Reason = fmt.Sprintf("login request failed: %v", err)
		return out
	}

	if status == http.StatusUnauthorized {
		regStatus, _, err := s.postJSON(ctx, s.registerPath, s.creds)
		switch {
		case err != nil:
			logger.Warn("Register request failed", logger.Err(err))
		case regStatus >= 200 && regStatus < 300:
			out.Registered = true
			logger.Info("Registered test user", logger.String("email", s.creds.Email), logger.Int("status", regStatus))

			status, body, err = s.postJSON(ctx, s.loginPath, login)
			if err != nil {
				out.Reason = fmt.Sprintf("login request failed: %v", err)
				return out
			}
		default:
			logger.Warn("Register rejected", logger.Int("status", regStatus))
		}
	}

	out.LoginStatus = status
	if status != http.StatusOK {
		out.Reason = fmt.Sprintf("Login failed with status %d: %s", status, strings.TrimSpace(string(body)))
		return out
	}

	token := gjson.GetBytes(body, tokenPath).String()
	if token == "" {
		out.Reason = "No token in response"
		return out
	}

	out.Provider = NewBearerAuth(token)
	logger.Debug("Session token acquired", logger.String("token", RedactString(token)))
	return out
}

func (s *Session) postJSON(ctx context.Context, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	logger.Debug("Auth exchange", logger.String("path", path), logger.Int("status", resp.StatusCode))
	return resp.StatusCode, body, nil
}
