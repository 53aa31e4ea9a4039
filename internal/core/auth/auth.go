package auth

import (
	"net/http"
)

// AuthProvider applies authentication to HTTP requests
type AuthProvider interface {
	// Apply adds authentication to the request
	Apply(req *http.Request) error

	// Type returns the authentication type identifier
	Type() string

	// Redact returns a copy with sensitive data hidden (for logging)
	Redact() AuthProvider
}

// NoAuth leaves requests untouched
type NoAuth struct{}

func (n *NoAuth) Apply(req *http.Request) error {
	return nil
}

func (n *NoAuth) Type() string {
	return "none"
}

func (n *NoAuth) Redact() AuthProvider {
	return n
}

// IsAuthenticated reports whether p adds any credentials
func IsAuthenticated(p AuthProvider) bool {
	return p != nil && p.Type() != "none"
}

// RedactString hides sensitive data for logging
func RedactString(s string) string {
	if len(s) == 0 {
		return "<empty>"
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}
