package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/service"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// AuthHandler exposes registration, login, logout and token refresh.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, pair, err := h.auth.Register(c.UserContext(), req.Email, req.Name, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.RegisterResponse{
		User:   dto.NewUserResponse(user),
		Tokens: dto.NewTokenPairResponse(pair),
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	_, pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTokenPairResponse(pair))
}

// Logout handles POST /logout. A refresh token that cannot be parsed, or an access token
// passed in its place, is a client input error here rather than an authentication failure.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return auth.ErrMissingToken
	}
	var req dto.RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	err := h.auth.Logout(c.UserContext(), principal.User, req.Refresh)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrTokenMalformed):
		return auth.ErrTokenMalformed.WithStatus(http.StatusBadRequest)
	case errors.Is(err, auth.ErrWrongTokenType):
		return auth.ErrWrongTokenType.WithStatus(http.StatusBadRequest)
	default:
		return err
	}
	return c.Status(http.StatusResetContent).JSON(dto.DetailResponse{Detail: "logged out"})
}

// Refresh handles POST /token/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	pair, err := h.auth.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTokenPairResponse(pair))
}

// parseBody decodes the JSON body and checks its validation tags.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(out)
}
