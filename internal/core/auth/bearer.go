package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// BearerAuth sends a session token in the Authorization header
type BearerAuth struct {
	Token string `json:"token"`
}

func NewBearerAuth(token string) *BearerAuth {
	return &BearerAuth{Token: token}
}

func (b *BearerAuth) Apply(req *http.Request) error {
	if strings.TrimSpace(b.Token) == "" {
		return fmt.Errorf("bearer token cannot be empty")
	}
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

func (b *BearerAuth) Type() string {
	return "bearer"
}

func (b *BearerAuth) Redact() AuthProvider {
	return &BearerAuth{Token: RedactString(b.Token)}
}

func (b *BearerAuth) String() string {
	return fmt.Sprintf("Bearer Token (%s)", RedactString(b.Token))
}
