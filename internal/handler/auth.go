package handler

import (
	"net/http"

	"github.com/abdusco/linkbox/internal/auth"
	"github.com/abdusco/linkbox/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserResponse struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(c echo.Context) error {
	var req CredentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	message, err := h.auth.Signup(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Signup failed").SetInternal(err)
	}

	return c.JSON(http.StatusCreated, MessageResponse{Message: message})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password").SetInternal(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: service.TokenType})
}

// Me handles GET /me. It must run behind the auth middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	return c.JSON(http.StatusOK, UserResponse{
		ID:    user.ID,
		Email: lo.EmptyableToPtr(user.Email),
	})
}
