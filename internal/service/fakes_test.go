package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/abdusco/linkbox/internal"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	signUpErr error
	session   *internal.Session
	signInErr error
	users     map[string]*internal.User
	getErr    error

	getUserCalls int
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) error {
	return f.signUpErr
}

func (f *fakeIdentity) SignInWithPassword(ctx context.Context, email, password string) (*internal.Session, error) {
	return f.session, f.signInErr
}

func (f *fakeIdentity) GetUser(ctx context.Context, accessToken string) (*internal.User, error) {
	f.getUserCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.users[accessToken], nil
}

type fakeStore struct {
	links     []internal.Link
	insertErr error
	noRow     bool
	listErr   error

	inserts int
	seq     int
	clock   time.Time
}

func (f *fakeStore) InsertLink(ctx context.Context, userID, title, url string) (*internal.Link, error) {
	f.inserts++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if f.noRow {
		return nil, nil
	}

	f.seq++
	if f.clock.IsZero() {
		f.clock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	link := internal.Link{
		ID:        "link-" + strconv.Itoa(f.seq),
		UserID:    userID,
		Title:     title,
		URL:       url,
		CreatedAt: f.clock.Add(time.Duration(f.seq) * time.Second),
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
		return []internal.Link{}, len(owned), nil
	}
	end := min(to+1, len(owned))
	return owned[from:end], len(owned), nil
}

var errUpstream = errors.New("upstream exploded")

// testToken returns a well-formed JWT; the signature is irrelevant to the pre-screen.
func testToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub, "exp": exp.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return token
}
