package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-pos/internal/auth"
	"github.com/spec-kit/clinic-pos/internal/config"
	"github.com/spec-kit/clinic-pos/internal/domain"
	"github.com/spec-kit/clinic-pos/internal/events"
	"github.com/spec-kit/clinic-pos/internal/landing"
	"github.com/spec-kit/clinic-pos/internal/repository"
)

// LoginResult is returned from a successful staff login.
type LoginResult struct {
	Staff     *domain.StaffRecord
	Token     string
	ExpiresAt time.Time
	Landing   string
}

// AuthService coordinates login, logout and password flows.
type AuthService struct {
	staff      repository.StaffRepository
	tokenMgr   *auth.TokenManager
	revoked    auth.RevocationStore
	resolver   *landing.Resolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	StaffRepo  repository.StaffRepository
	Revocation auth.RevocationStore
	Resolver   *landing.Resolver
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := deps.Resolver
	if resolver == nil {
		resolver = landing.NewResolver(deps.StaffRepo, logger, nil)
	}
	return &AuthService{
		staff:      deps.StaffRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		revoked:    deps.Revocation,
		resolver:   resolver,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		now:        time.Now,
	}
}

// Login authenticates staff, issues a token and resolves the landing route
// once for this login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrStaffNotFound) {
			s.publish(ctx, events.Event{Type: events.EventLoginFailed, Payload: events.LoginFailedPayload{Email: email, Reason: "unknown email"}})
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup staff: %w", err)
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		s.publish(ctx, events.Event{Type: events.EventLoginFailed, UID: staff.UID, Payload: events.LoginFailedPayload{Email: email, Reason: "invalid credentials"}})
		return nil, auth.ErrInvalidCredentials
	}

	token, exp, err := s.tokenMgr.GenerateToken(staff.Principal())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	route := s.resolver.ResolveLanding(ctx, staff.UID)

	s.publish(ctx, events.Event{Type: events.EventStaffLoggedIn, UID: staff.UID, Role: staff.Role, Payload: events.LoggedInPayload{Landing: route}})
	return &LoginResult{Staff: staff, Token: token, ExpiresAt: exp, Landing: route}, nil
}

// Logout revokes the token described by claims until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return nil
	}
	if s.revoked != nil && claims.ID != "" && claims.ExpiresAt != nil {
		if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
	}
	s.publish(ctx, events.Event{Type: events.EventStaffLoggedOut, UID: claims.UID, Role: claims.Role})
	return nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, uid, currentPassword, newPassword string) error {
	staff, err := s.staff.GetByUID(ctx, uid)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(staff.PasswordHash, currentPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.staff.UpdatePassword(ctx, uid, hash); err != nil {
		return err
	}
	s.publish(ctx, events.Event{Type: events.EventPasswordChanged, UID: uid, Role: staff.Role})
	return nil
}

// ResolveLanding exposes the landing decision for an existing session.
func (s *AuthService) ResolveLanding(ctx context.Context, uid string) string {
	return s.resolver.ResolveLanding(ctx, uid)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, e events.Event) {
	if s.dispatcher == nil {
		return
	}
	e.ID = uuid.NewString()
	e.Timestamp = s.now()
	if err := s.dispatcher.Publish(ctx, e); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(e.Type)), zap.Error(err))
	}
}
