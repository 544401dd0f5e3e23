package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/abdusco/linkbox/internal"
	"github.com/abdusco/linkbox/internal/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream unavailable")

type fakeIdentity struct {
	signUpErr   error
	signUpCalls int
	session     *internal.Session
	sessionErr  error
	users       map[string]internal.User // token -> user
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) error {
	f.signUpCalls++
	return f.signUpErr
}

func (f *fakeIdentity) SignInWithPassword(ctx context.Context, email, password string) (*internal.Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeIdentity) GetUser(ctx context.Context, accessToken string) (*internal.User, error) {
	user, ok := f.users[accessToken]
	if !ok {
		return nil, errors.New("invalid JWT")
	}
	return &user, nil
}

type fakeStore struct {
	links       []internal.Link
	insertErr   error
	insertCalls int
	listErr     error
}

func (f *fakeStore) InsertLink(ctx context.Context, userID, title, url string) (*internal.Link, error) {
	f.insertCalls++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	link := internal.Link{
		ID:        fmt.Sprintf("link-%d", len(f.links)+1),
		UserID:    userID,
		Title:     title,
		URL:       url,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, len(f.links), 0, time.UTC),
	}
	f.links = append(f.links, link)
	return &link, nil
}

func (f *fakeStore) ListLinks(ctx context.Context, userID string, from, to int) ([]internal.Link, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var owned []internal.Link
	for _, l := range f.links {
		if l.UserID == userID {
			owned = append(owned, l)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })

	if from >= len(owned) {
		return nil, len(owned), nil
	}
	end := min(to+1, len(owned))
	return owned[from:end], len(owned), nil
}

func testToken(t *testing.T, sub string) string {
	t.Helper()
	token, err := auth.SignToken(sub, "", "handler-test", time.Hour)
	require.NoError(t, err)
	return token
}

func newRequest(method, target, body, token string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

// call runs h for req, behind the auth middleware when idp is non-nil.
func call(h echo.HandlerFunc, req *http.Request, idp *fakeIdentity) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	e.Validator = NewValidator()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if idp != nil {
		h = auth.NewAuthMiddleware(idp)(h)
	}
	return rec, h(c)
}

func requireHTTPError(t *testing.T, err error, code int, message string) {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, code, httpErr.Code)
	assert.Equal(t, message, httpErr.Message)
}

func requireFieldErrors(t *testing.T, err error, fields ...string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	var got []string
	for _, f := range verr.Fields {
		got = append(got, f.Field)
		assert.NotEmpty(t, f.Message)
	}
	assert.ElementsMatch(t, fields, got)
}
