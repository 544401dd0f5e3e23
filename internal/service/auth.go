package service

import (
	"context"
	"strings"
	"time"

	"github.com/abdusco/linkbox/internal"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	SignupMessage = "Signup successful. Check your email if confirmation is required."
	TokenType     = "bearer"
)

type AuthService struct {
	idp IdentityProvider
}

func NewAuthService(idp IdentityProvider) *AuthService {
	return &AuthService{idp: idp}
}

// Signup registers the credentials with the identity provider. Every provider
// failure collapses into ErrSignupFailed so callers cannot tell an existing
// account from any other rejection.
func (s *AuthService) Signup(ctx context.Context, email, password string) (string, error) {
	if err := s.idp.SignUp(ctx, email, password); err != nil {
		log.Warn().Err(err).Msg("signup rejected by identity provider")
		return "", ErrSignupFailed
	}
	return SignupMessage, nil
}

// Login exchanges credentials for an access token. A provider error, a missing
// session and a session without a token all yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	session, err := s.idp.SignInWithPassword(ctx, email, password)
	if err != nil {
		log.Debug().Err(err).Msg("password grant rejected")
		return "", ErrInvalidCredentials
	}
	if session == nil || session.AccessToken == "" {
		log.Warn().Msg("password grant returned no session")
		return "", ErrInvalidCredentials
	}
	return session.AccessToken, nil
}

// ParseBearer extracts the token from an Authorization header value of the form
// "Bearer <token>". The scheme is matched case-insensitively.
func ParseBearer(authorization string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// ResolveUser maps an Authorization header to the caller's identity. Every failure,
// whatever its cause, is ErrNotAuthenticated.
func ResolveUser(ctx context.Context, idp IdentityProvider, authorization string) (internal.User, error) {
	token, ok := ParseBearer(authorization)
	if !ok {
		return internal.User{}, ErrNotAuthenticated
	}

	if err := prescreenToken(token, time.Now()); err != nil {
		log.Debug().Err(err).Msg("bearer token rejected before provider call")
		return internal.User{}, ErrNotAuthenticated
	}

	user, err := idp.GetUser(ctx, token)
	if err != nil {
		log.Debug().Err(err).Msg("identity provider rejected token")
		return internal.User{}, ErrNotAuthenticated
	}
	if user == nil || user.ID == "" {
		return internal.User{}, ErrNotAuthenticated
	}

	return *user, nil
}

// prescreenToken rejects tokens that are not JWTs or have already expired, which
// the provider would refuse anyway. The signature is left to the provider.
func prescreenToken(token string, now time.Time) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return err
	}
	if exp != nil && !now.Before(exp.Time) {
		return jwt.ErrTokenExpired
	}

	return nil
}
