package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/prospect-agent/internal/auth"
	"github.com/octobees/prospect-agent/internal/dto"
)

// AuthHandler exposes the admin login endpoint.
type AuthHandler struct {
	verifier   *auth.Verifier
	jwtManager *auth.JWTManager
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(verifier *auth.Verifier, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{verifier: verifier, jwtManager: jwtManager}
}

// Login handles POST /auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return Error(c, http.StatusBadRequest, "email and password are required")
	}

	if err := h.verifier.Authenticate(req.Email, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return Error(c, http.StatusUnauthorized, "invalid credentials")
		}
		return Error(c, http.StatusInternalServerError, "unable to authenticate")
	}

	token, err := h.jwtManager.GenerateToken(req.Email)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "unable to authenticate")
	}

	return Success(c, http.StatusOK, "login successful", dto.LoginResponse{AccessToken: token})
}
