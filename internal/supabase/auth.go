package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abdusco/linkbox/internal"
	"github.com/tidwall/gjson"
)

// AuthClient talks to the GoTrue API under /auth/v1.
type AuthClient struct {
	client *Client
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AuthClient) SignUp(ctx context.Context, email, password string) error {
	body, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := a.client.do(ctx, http.MethodPost, "/auth/v1/signup", bytes.NewReader(body), nil, "")
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, resp.Body)
	}
	return nil
}

// SignInWithPassword performs the password grant. It returns a nil session when the
// provider answers successfully without one.
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*internal.Session, error) {
	body, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := a.client.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", bytes.NewReader(body), nil, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, parseError(resp.StatusCode, resp.Body)
	}

	token := gjson.GetBytes(resp.Body, "access_token")
	if !token.Exists() {
		return nil, nil
	}
	return &internal.Session{AccessToken: token.String()}, nil
}

// GetUser verifies accessToken with the provider and returns its principal.
func (a *AuthClient) GetUser(ctx context.Context, accessToken string) (*internal.User, error) {
	resp, err := a.client.do(ctx, http.MethodGet, "/auth/v1/user", nil, nil, accessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, parseError(resp.StatusCode, resp.Body)
	}

	res := gjson.GetManyBytes(resp.Body, "id", "email")
	if !res[0].Exists() {
		return nil, nil
	}
	return &internal.User{ID: res[0].String(), Email: res[1].String()}, nil
}
