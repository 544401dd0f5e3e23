package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdusco/linkbox/internal"
	"github.com/abdusco/linkbox/internal/repo"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidPassword = errors.New("invalid password")

// LocalIdentity is an in-process identity provider backed by the users table.
// It issues HS256 access tokens signed with jwtSecret.
type LocalIdentity struct {
	users     *repo.UsersRepo
	jwtSecret string
	tokenTTL  time.Duration
}

func NewLocalIdentity(users *repo.UsersRepo, jwtSecret string, tokenTTL time.Duration) *LocalIdentity {
	return &LocalIdentity{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (l *LocalIdentity) SignUp(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := l.users.Create(ctx, email, string(hash)); err != nil {
		return err
	}
	return nil
}

func (l *LocalIdentity) SignInWithPassword(ctx context.Context, email, password string) (*internal.Session, error) {
	user, err := l.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidPassword
	}

	token, err := SignToken(user.ID, user.Email, l.jwtSecret, l.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	log.Debug().Str("user_id", user.ID).Msg("session issued")
	return &internal.Session{AccessToken: token}, nil
}

func (l *LocalIdentity) GetUser(ctx context.Context, accessToken string) (*internal.User, error) {
	claims, err := ValidateToken(accessToken, l.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := l.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	return &internal.User{ID: user.ID, Email: user.Email}, nil
}
