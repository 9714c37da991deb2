package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-pos/internal/auth"
	"github.com/spec-kit/clinic-pos/internal/config"
	"github.com/spec-kit/clinic-pos/internal/domain"
	"github.com/spec-kit/clinic-pos/internal/repository"
)

// EnsureAdmin creates the configured admin account when the directory has no
// admin yet. It is a no-op without bootstrap credentials.
func EnsureAdmin(ctx context.Context, repo repository.StaffRepository, cfg config.Config, logger *zap.Logger) error {
	if cfg.Bootstrap.AdminEmail == "" {
		return nil
	}

	role := domain.RoleAdmin
	admins, err := repo.List(ctx, repository.StaffFilter{Role: &role, Limit: 1})
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	if len(admins) > 0 {
		logger.Debug("admin present; skipping bootstrap")
		return nil
	}

	hash, err := auth.HashPassword(cfg.Bootstrap.AdminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	admin := &domain.StaffRecord{
		UID:          uuid.NewString(),
		Email:        cfg.Bootstrap.AdminEmail,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	logger.Info("bootstrap admin created", zap.String("uid", admin.UID), zap.String("email", admin.Email))
	return nil
}
