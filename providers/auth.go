package providers

import (
	"context"
	"net/http"
	"time"
)

// AuthProvider implements Authenticator against the admin login endpoint.
type AuthProvider struct {
	api apiClient
}

// NewAuthProvider creates a new AuthProvider; loginURL is the full endpoint.
func NewAuthProvider(loginURL string, timeout time.Duration) *AuthProvider {
	return &AuthProvider{api: newAPIClient(loginURL, timeout)}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (p *AuthProvider) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	if err := p.api.doRequest(ctx, "log in", http.MethodPost, "", "", loginRequest{Username: username, Password: password}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	return out.Token, nil
}
