package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-pos/internal/access"
	"github.com/spec-kit/clinic-pos/internal/api/dto"
	"github.com/spec-kit/clinic-pos/internal/auth"
	apperrors "github.com/spec-kit/clinic-pos/pkg/util"
)

// DashboardHandler serves descriptors for guarded dashboard pages.
type DashboardHandler struct {
	policy *access.Policy
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(policy *access.Policy) *DashboardHandler {
	return &DashboardHandler{policy: policy}
}

// Page handles GET /dashboard and GET /dashboard/*. It runs behind the route guard.
func (h *DashboardHandler) Page(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	path := c.Path()
	rule, _ := h.policy.Match(path)
	return c.JSON(fiber.Map{"data": dto.PageResponse{
		Page:   pageName(path),
		Path:   path,
		Role:   principal.Role,
		Rule:   rule,
		Viewer: principal.UID,
	}})
}

// Unauthorized renders the access-denied page with a 403 status.
func Unauthorized(c *fiber.Ctx) error {
	resp := dto.UnauthorizedPageResponse{
		Page:    "unauthorized",
		Path:    c.Path(),
		Message: "you do not have access to this page",
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		resp.Role = principal.Role
	}
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"data": resp})
}

func pageName(path string) string {
	rest := strings.Trim(strings.TrimPrefix(path, "/dashboard"), "/")
	if rest == "" {
		return "home"
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}
