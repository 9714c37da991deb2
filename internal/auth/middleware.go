package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-pos/internal/domain"
	"github.com/spec-kit/clinic-pos/internal/repository"
	"github.com/spec-kit/clinic-pos/internal/session"
	apperrors "github.com/spec-kit/clinic-pos/pkg/util"
)

const (
	stateKey  = "auth_session_state"
	claimsKey = "auth_claims"
)

// StaffLookup resolves the staff record behind a token.
type StaffLookup interface {
	GetByUID(ctx context.Context, uid string) (*domain.StaffRecord, error)
}

// SessionMiddleware derives the request's session state from its bearer token.
type SessionMiddleware struct {
	tokens  *TokenManager
	staff   StaffLookup
	revoked RevocationStore
	logger  *zap.Logger
}

// NewSessionMiddleware constructs middleware. revoked may be nil.
func NewSessionMiddleware(tokens *TokenManager, staff StaffLookup, revoked RevocationStore, logger *zap.Logger) *SessionMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionMiddleware{tokens: tokens, staff: staff, revoked: revoked, logger: logger}
}

// Handle attaches a session state to every request. Requests without a
// usable token are anonymous; nothing is rejected here.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	state, claims := m.resolve(c)
	c.Locals(stateKey, state)
	if claims != nil {
		c.Locals(claimsKey, claims)
	}
	return c.Next()
}

func (m *SessionMiddleware) resolve(c *fiber.Ctx) (session.State, *Claims) {
	raw, ok := bearerToken(c)
	if !ok {
		return session.Anonymous(), nil
	}

	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		m.logger.Debug("rejecting bearer token", zap.Error(err))
		return session.Anonymous(), nil
	}

	ctx := c.UserContext()
	if err := EnsureNotRevoked(ctx, m.revoked, claims.ID); err != nil {
		if errors.Is(err, ErrTokenRevoked) {
			m.logger.Debug("rejecting revoked token", zap.String("uid", claims.UID))
		} else {
			m.logger.Warn("revocation check failed", zap.String("uid", claims.UID), zap.Error(err))
		}
		return session.Anonymous(), nil
	}

	principal := claims.Principal()
	if m.staff != nil {
		record, err := m.staff.GetByUID(ctx, claims.UID)
		if err != nil {
			if !errors.Is(err, repository.ErrStaffNotFound) {
				m.logger.Warn("staff lookup failed for bearer", zap.String("uid", claims.UID), zap.Error(err))
			}
			return session.Anonymous(), nil
		}
		principal = record.Principal()
	}
	return session.Authenticated(principal), claims
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// StateFromContext returns the session state attached by SessionMiddleware.
// Requests that bypassed the middleware are anonymous.
func StateFromContext(c *fiber.Ctx) session.State {
	if st, ok := c.Locals(stateKey).(session.State); ok {
		return st
	}
	return session.Anonymous()
}

// ClaimsFromContext returns the verified token claims, if any.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	st := StateFromContext(c)
	if st.Status != session.StatusAuthenticated || st.Principal == nil {
		return nil, false
	}
	return st.Principal, true
}

// RequireAuthenticated rejects anonymous API callers with 401.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
