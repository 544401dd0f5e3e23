// Package service holds the business functions: it turns validated input into
// identity-provider and store calls and reshapes the results.
package service

import (
	"context"
	"errors"

	"github.com/abdusco/linkbox/internal"
)

var (
	ErrSignupFailed       = errors.New("signup failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrLinkNotCreated     = errors.New("failed to create link")
)

// IdentityProvider issues and verifies sessions.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) error
	SignInWithPassword(ctx context.Context, email, password string) (*internal.Session, error)
	GetUser(ctx context.Context, accessToken string) (*internal.User, error)
}

// LinkStore persists links. Implementations assign ID and CreatedAt on insert.
type LinkStore interface {
	InsertLink(ctx context.Context, userID, title, url string) (*internal.Link, error)
	// ListLinks returns the owner's links newest first, restricted to the inclusive
	// row range [from, to], along with the owner's total link count.
	ListLinks(ctx context.Context, userID string, from, to int) ([]internal.Link, int, error)
}
