package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-pos/internal/access"
	"github.com/spec-kit/clinic-pos/internal/api/dto"
	"github.com/spec-kit/clinic-pos/internal/auth"
	apperrors "github.com/spec-kit/clinic-pos/pkg/util"
)

// AccessHandler lets clients query the route policy for the caller's role.
type AccessHandler struct {
	policy *access.Policy
}

// NewAccessHandler constructs handler.
func NewAccessHandler(policy *access.Policy) *AccessHandler {
	return &AccessHandler{policy: policy}
}

// Check handles GET /access/check?path=.
func (h *AccessHandler) Check(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	path := c.Query("path")
	if path == "" {
		return apperrors.NewValidationError("path query parameter required", nil)
	}

	rule, _ := h.policy.Match(path)
	return c.JSON(fiber.Map{"data": dto.AccessCheckResponse{
		Path:    path,
		Role:    principal.Role,
		Allowed: h.policy.HasAccess(path, principal.Role),
		Rule:    rule,
	}})
}

// Routes handles GET /access/routes: the patterns the caller's role may view.
func (h *AccessHandler) Routes(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	patterns := []string{}
	for _, rule := range h.policy.Rules() {
		for _, role := range rule.Roles {
			if role == principal.Role {
				patterns = append(patterns, rule.Pattern)
				break
			}
		}
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"role": principal.Role, "routes": patterns}})
}
