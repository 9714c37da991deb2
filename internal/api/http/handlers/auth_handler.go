package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-pos/internal/api/dto"
	"github.com/spec-kit/clinic-pos/internal/auth"
	"github.com/spec-kit/clinic-pos/internal/repository"
	"github.com/spec-kit/clinic-pos/internal/service"
	"github.com/spec-kit/clinic-pos/internal/session"
	apperrors "github.com/spec-kit/clinic-pos/pkg/util"
)

// AuthHandler exposes login, logout and session endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	res, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return apperrors.NewServiceUnavailable("staff directory unavailable", err)
	}

	return c.JSON(fiber.Map{
		"data": dto.LoginResponse{
			Staff:   dto.StaffFromDomain(res.Staff),
			Auth:    dto.AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt},
			Landing: res.Landing,
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.authService.Logout(c.UserContext(), claims); err != nil {
		return apperrors.NewServiceUnavailable("unable to revoke session", err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "signed_out"}})
}

// Session handles GET /auth/session. Anonymous callers get a 200 with state
// "anonymous" so clients can branch without error handling.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	state := auth.StateFromContext(c)
	resp := dto.SessionResponse{State: state.Status.String()}
	if state.Status == session.StatusAuthenticated && state.Principal != nil {
		resp.Principal = state.Principal
		resp.Landing = h.authService.ResolveLanding(c.UserContext(), state.Principal.UID)
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}

	err := h.authService.ChangePassword(c.UserContext(), principal.UID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"data": fiber.Map{"status": "password_changed"}})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid credentials")
	case errors.Is(err, auth.ErrWeakPassword):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, repository.ErrStaffNotFound):
		return apperrors.NewNotFound("staff record", nil)
	default:
		return apperrors.NewInternalError(err)
	}
}
