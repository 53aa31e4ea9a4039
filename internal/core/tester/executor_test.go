package tester

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Octrafic/qakit/internal/core/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldAttachAuth(t *testing.T) {
	tests := []struct {
		name        string
		authPresent bool
		method      string
		path        string
		want        bool
	}{
		{"get non-health with auth", true, "GET", "/users", true},
		{"get non-health without auth", false, "GET", "/users", true},
		{"post health with auth", true, "POST", "/health", true},
		{"get health with auth", true, "GET", "/health", false},
		{"post health without auth", false, "POST", "/health", false},
		{"lowercase method", true, "get", "/health", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldAttachAuth(tt.authPresent, tt.method, tt.path))
		})
	}
}

func TestExecuteTest(t *testing.T) {
	var gotAuth, gotContentType, gotTrace string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotTrace = r.Header.Get("X-Trace")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	exec := NewExecutor(ts.URL+"/api/", auth.NewBearerAuth("tok"), 0)
	assert.Equal(t, ts.URL+"/api", exec.BaseURL())

	res, err := exec.ExecuteTest(context.Background(), Request{
		Method:  http.MethodPost,
		Path:    "/expenses",
		Headers: map[string]string{"X-Trace": "abc"},
		Body:    map[string]any{"amount": 12.5},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, `{"ok":true}`, res.ResponseBody)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "abc", gotTrace)
	assert.Equal(t, 12.5, gotBody["amount"])
}

func TestExecuteTestSkipsAuthOnHealthGet(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer ts.Close()

	exec := NewExecutor(ts.URL, auth.NewBearerAuth("tok"), 0)
	_, err := exec.ExecuteTest(context.Background(), Request{Method: http.MethodGet, Path: "/health"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestExecuteTestAuthIgnoresQuery(t *testing.T) {
	var gotAuth, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
	}))
	defer ts.Close()

	exec := NewExecutor(ts.URL, auth.NewBearerAuth("tok"), 0)
	_, err := exec.ExecuteTest(context.Background(), Request{Method: http.MethodGet, Path: "/status?check=health"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "check=health", gotQuery)

	_, err = exec.ExecuteTest(context.Background(), Request{Method: http.MethodGet, Path: "/health?verbose=1"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestExecuteTestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	res, err := NewExecutor(url, nil, time.Second).ExecuteTest(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.ErrorContains(t, res.Error, "request failed")
}

func TestHealth(t *testing.T) {
	status := http.StatusOK
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer ts.Close()

	exec := NewExecutor(ts.URL+"/api", nil, 0)

	code, err := exec.Health(context.Background(), "/health", 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)

	status = http.StatusServiceUnavailable
	code, err = exec.Health(context.Background(), "/health", time.Second)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestNewExecutorAddsScheme(t *testing.T) {
	assert.Equal(t, "http://localhost:3001/api", NewExecutor("localhost:3001/api", nil, 0).BaseURL())
}
