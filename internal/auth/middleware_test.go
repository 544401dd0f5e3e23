package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abdusco/linkbox/internal"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIdentity struct {
	user *internal.User
	err  error
}

func (s stubIdentity) SignUp(ctx context.Context, email, password string) error { return nil }

func (s stubIdentity) SignInWithPassword(ctx context.Context, email, password string) (*internal.Session, error) {
	return nil, nil
}

func (s stubIdentity) GetUser(ctx context.Context, accessToken string) (*internal.User, error) {
	return s.user, s.err
}

func runMiddleware(t *testing.T, idp stubIdentity, authorization string) (internal.User, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got internal.User
	var ok bool
	err := NewAuthMiddleware(idp)(func(c echo.Context) error {
		got, ok = CurrentUser(c)
		return nil
	})(c)
	return got, ok, err
}

func TestAuthMiddleware_SetsUser(t *testing.T) {
	token, err := SignToken("u1", "a@example.com", "s", time.Hour)
	require.NoError(t, err)

	user, ok, err := runMiddleware(t, stubIdentity{user: &internal.User{ID: "u1", Email: "a@example.com"}}, "Bearer "+token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", user.ID)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	token, err := SignToken("u1", "", "s", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name          string
		idp           stubIdentity
		authorization string
	}{
		{"no header", stubIdentity{user: &internal.User{ID: "u1"}}, ""},
		{"basic", stubIdentity{user: &internal.User{ID: "u1"}}, "Basic dXNlcjpwYXNz"},
		{"provider rejects", stubIdentity{err: errors.New("bad jwt")}, "Bearer " + token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := runMiddleware(t, tt.idp, tt.authorization)
			assert.False(t, ok)

			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
			assert.Equal(t, "Not authenticated", httpErr.Message)
		})
	}
}
