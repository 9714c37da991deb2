package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/clinic-pos/internal/domain"
)

func TestMemoryStaffRepository(t *testing.T) {
	repo := NewMemoryStaffRepository()
	ctx := context.Background()
	doctorID := "d-1"

	require.NoError(t, repo.Create(ctx, &domain.StaffRecord{UID: "u1", Email: "Doc@Clinic.test", Role: domain.RoleDoctor, DoctorID: &doctorID}))
	require.NoError(t, repo.Create(ctx, &domain.StaffRecord{UID: "u2", Email: "cash@clinic.test", Role: domain.RoleCashier}))

	assert.ErrorIs(t, repo.Create(ctx, &domain.StaffRecord{UID: "u1", Email: "other@clinic.test", Role: domain.RoleAdmin}), ErrStaffExists)
	assert.ErrorIs(t, repo.Create(ctx, &domain.StaffRecord{UID: "u3", Email: "doc@clinic.test", Role: domain.RoleAdmin}), ErrStaffExists)
	assert.ErrorIs(t, repo.Create(ctx, &domain.StaffRecord{UID: "u4", Email: "x@clinic.test", Role: domain.RoleDoctor}), domain.ErrDoctorIDRequired)

	byEmail, err := repo.GetByEmail(ctx, "DOC@clinic.test")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.UID)

	_, err = repo.GetByUID(ctx, "missing")
	assert.ErrorIs(t, err, ErrStaffNotFound)

	require.NoError(t, repo.UpdatePassword(ctx, "u2", "hash"))
	updated, err := repo.GetByUID(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "hash", updated.PasswordHash)
	assert.NotNil(t, updated.PasswordResetAt)
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "missing", "hash"), ErrStaffNotFound)

	role := domain.RoleCashier
	list, err := repo.List(ctx, StaffFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u2", list[0].UID)

	all, err := repo.List(ctx, StaffFilter{Offset: 1, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := repo.List(ctx, StaffFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, none)
}
