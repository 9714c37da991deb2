package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-pos/internal/auth"
	"github.com/spec-kit/clinic-pos/internal/config"
	"github.com/spec-kit/clinic-pos/internal/domain"
	"github.com/spec-kit/clinic-pos/internal/events"
	"github.com/spec-kit/clinic-pos/internal/repository"
)

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4}}
}

func seed(t *testing.T, repo repository.StaffRepository, uid, email string, role domain.Role) {
	t.Helper()
	hash, err := auth.HashPassword("password123", 4)
	require.NoError(t, err)
	rec := &domain.StaffRecord{UID: uid, Email: email, Role: role, PasswordHash: hash}
	if role == domain.RoleDoctor {
		id := "doc-" + uid
		rec.DoctorID = &id
	}
	require.NoError(t, repo.Create(context.Background(), rec))
}

type eventLog struct {
	mu    sync.Mutex
	types []events.EventType
}

func (l *eventLog) attach(d events.Dispatcher) {
	for _, t := range []events.EventType{events.EventStaffLoggedIn, events.EventStaffLoggedOut, events.EventPasswordChanged, events.EventLoginFailed} {
		d.Subscribe(t, func(_ context.Context, e events.Event) error {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.types = append(l.types, e.Type)
			return nil
		})
	}
}

func newTestService(t *testing.T) (*AuthService, repository.StaffRepository, *auth.MemoryRevocationStore, *eventLog) {
	t.Helper()
	repo := repository.NewMemoryStaffRepository()
	seed(t, repo, "u1", "doc@clinic.test", domain.RoleDoctor)
	seed(t, repo, "u2", "cash@clinic.test", domain.RoleCashier)

	revoked := auth.NewMemoryRevocationStore()
	dispatcher := events.NewInMemoryDispatcher()
	log := &eventLog{}
	log.attach(dispatcher)

	svc := NewAuthService(testConfig(), AuthDependencies{
		StaffRepo:  repo,
		Revocation: revoked,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return svc, repo, revoked, log
}

func TestLoginResolvesLandingByRole(t *testing.T) {
	svc, _, _, log := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Login(ctx, "doc@clinic.test", "password123")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/my-sessions", doc.Landing)
	assert.NotEmpty(t, doc.Token)

	cashier, err := svc.Login(ctx, "CASH@clinic.test", "password123")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/pos", cashier.Landing)

	claims, err := svc.TokenManager().ParseToken(cashier.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCashier, claims.Role)
	assert.Equal(t, "u2", claims.UID)

	assert.Equal(t, []events.EventType{events.EventStaffLoggedIn, events.EventStaffLoggedIn}, log.types)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _, log := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "doc@clinic.test", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@clinic.test", "password123")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	assert.Equal(t, []events.EventType{events.EventLoginFailed, events.EventLoginFailed}, log.types)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, revoked, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "cash@clinic.test", "password123")
	require.NoError(t, err)
	claims, err := svc.TokenManager().ParseToken(res.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	isRevoked, err := revoked.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, isRevoked)

	assert.NoError(t, svc.Logout(ctx, nil))
}

func TestChangePassword(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, "u2", "wrong", "new-password-1"), auth.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "u2", "password123", "short"), auth.ErrWeakPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "nope", "password123", "new-password-1"), repository.ErrStaffNotFound)

	require.NoError(t, svc.ChangePassword(ctx, "u2", "password123", "new-password-1"))
	rec, err := repo.GetByUID(ctx, "u2")
	require.NoError(t, err)
	assert.NotNil(t, rec.PasswordResetAt)

	_, err = svc.Login(ctx, "cash@clinic.test", "new-password-1")
	assert.NoError(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	repo := repository.NewMemoryStaffRepository()
	cfg := testConfig()
	ctx := context.Background()

	require.NoError(t, EnsureAdmin(ctx, repo, cfg, zap.NewNop()), "no credentials is a no-op")

	cfg.Bootstrap = config.BootstrapConfig{AdminEmail: "root@clinic.test", AdminPassword: "super-secret"}
	require.NoError(t, EnsureAdmin(ctx, repo, cfg, zap.NewNop()))
	require.NoError(t, EnsureAdmin(ctx, repo, cfg, zap.NewNop()))

	role := domain.RoleAdmin
	admins, err := repo.List(ctx, repository.StaffFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@clinic.test", admins[0].Email)
}
