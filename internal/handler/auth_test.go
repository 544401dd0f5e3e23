package handler

import (
	"net/http"
	"testing"

	"github.com/abdusco/linkbox/internal"
	"github.com/abdusco/linkbox/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	idp := &fakeIdentity{}
	h := NewAuthHandler(service.NewAuthService(idp))

	rec, err := call(h.Signup, newRequest(http.MethodPost, "/auth/signup", `{"email":"a@example.com","password":"secret1"}`, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Signup successful. Check your email if confirmation is required."}`, rec.Body.String())
}

func TestSignup_Rejected(t *testing.T) {
	idp := &fakeIdentity{signUpErr: errUpstream}
	h := NewAuthHandler(service.NewAuthService(idp))

	_, err := call(h.Signup, newRequest(http.MethodPost, "/auth/signup", `{"email":"a@example.com","password":"secret1"}`, ""), nil)
	requireHTTPError(t, err, http.StatusBadRequest, "Signup failed")
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"invalid email", `{"email":"nope","password":"secret1"}`, []string{"email"}},
		{"short password", `{"email":"a@example.com","password":"12345"}`, []string{"password"}},
		{"empty body", `{}`, []string{"email", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idp := &fakeIdentity{}
			h := NewAuthHandler(service.NewAuthService(idp))

			_, err := call(h.Signup, newRequest(http.MethodPost, "/auth/signup", tt.body, ""), nil)
			requireFieldErrors(t, err, tt.fields...)
			assert.Zero(t, idp.signUpCalls)
		})
	}
}

func TestSignup_MalformedBody(t *testing.T) {
	idp := &fakeIdentity{}
	h := NewAuthHandler(service.NewAuthService(idp))

	_, err := call(h.Signup, newRequest(http.MethodPost, "/auth/signup", `{"email":`, ""), nil)
	requireHTTPError(t, err, http.StatusBadRequest, "Invalid request body")
	assert.Zero(t, idp.signUpCalls)
}

func TestLogin(t *testing.T) {
	idp := &fakeIdentity{session: &internal.Session{AccessToken: "tok"}}
	h := NewAuthHandler(service.NewAuthService(idp))

	rec, err := call(h.Login, newRequest(http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"secret1"}`, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"access_token":"tok","token_type":"bearer"}`, rec.Body.String())
}

func TestLogin_FailuresLookAlike(t *testing.T) {
	tests := []struct {
		name string
		idp  *fakeIdentity
	}{
		{"provider error", &fakeIdentity{sessionErr: errUpstream}},
		{"no session", &fakeIdentity{}},
		{"empty token", &fakeIdentity{session: &internal.Session{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(service.NewAuthService(tt.idp))

			_, err := call(h.Login, newRequest(http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"secret1"}`, ""), nil)
			requireHTTPError(t, err, http.StatusUnauthorized, "Invalid email or password")
		})
	}
}

func TestMe(t *testing.T) {
	token := testToken(t, "u1")
	idp := &fakeIdentity{users: map[string]internal.User{token: {ID: "u1", Email: "a@example.com"}}}
	h := NewAuthHandler(service.NewAuthService(idp))

	rec, err := call(h.Me, newRequest(http.MethodGet, "/me", "", token), idp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"u1","email":"a@example.com"}`, rec.Body.String())
}

func TestMe_NullEmail(t *testing.T) {
	token := testToken(t, "u1")
	idp := &fakeIdentity{users: map[string]internal.User{token: {ID: "u1"}}}
	h := NewAuthHandler(service.NewAuthService(idp))

	rec, err := call(h.Me, newRequest(http.MethodGet, "/me", "", token), idp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1","email":null}`, rec.Body.String())
}

func TestMe_Unauthenticated(t *testing.T) {
	token := testToken(t, "u1")
	idp := &fakeIdentity{}
	h := NewAuthHandler(service.NewAuthService(idp))

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"missing header", newRequest(http.MethodGet, "/me", "", "")},
		{"rejected token", newRequest(http.MethodGet, "/me", "", token)},
	}

	basic := newRequest(http.MethodGet, "/me", "", "")
	basic.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	tests = append(tests, struct {
		name string
		req  *http.Request
	}{"basic scheme", basic})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(h.Me, tt.req, idp)
			requireHTTPError(t, err, http.StatusUnauthorized, "Not authenticated")
		})
	}
}
