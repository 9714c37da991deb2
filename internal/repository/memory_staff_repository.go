package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/clinic-pos/internal/domain"
)

// ErrStaffExists is returned when creating a record whose uid or email is taken.
var ErrStaffExists = errors.New("staff record already exists")

// memoryStaffRepository keeps staff records in process. It backs the
// service when no Postgres DSN is configured, and tests.
type memoryStaffRepository struct {
	mu      sync.RWMutex
	byUID   map[string]domain.StaffRecord
	byEmail map[string]string
	now     func() time.Time
}

// NewMemoryStaffRepository returns an empty in-memory repository.
func NewMemoryStaffRepository() StaffRepository {
	return &memoryStaffRepository{
		byUID:   make(map[string]domain.StaffRecord),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *memoryStaffRepository) Create(_ context.Context, staff *domain.StaffRecord) error {
	if err := staff.Validate(); err != nil {
		return err
	}
	email := strings.ToLower(staff.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUID[staff.UID]; ok {
		return ErrStaffExists
	}
	if _, ok := r.byEmail[email]; ok {
		return ErrStaffExists
	}
	now := r.now()
	staff.Email = email
	staff.CreatedAt = now
	staff.UpdatedAt = now
	r.byUID[staff.UID] = *staff
	r.byEmail[email] = staff.UID
	return nil
}

func (r *memoryStaffRepository) UpdatePassword(_ context.Context, uid, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff, ok := r.byUID[uid]
	if !ok {
		return ErrStaffNotFound
	}
	now := r.now()
	staff.PasswordHash = passwordHash
	staff.PasswordResetAt = &now
	staff.UpdatedAt = now
	r.byUID[uid] = staff
	return nil
}

func (r *memoryStaffRepository) GetByUID(_ context.Context, uid string) (*domain.StaffRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	staff, ok := r.byUID[uid]
	if !ok {
		return nil, ErrStaffNotFound
	}
	return &staff, nil
}

func (r *memoryStaffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffRecord, error) {
	r.mu.RLock()
	uid, ok := r.byEmail[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrStaffNotFound
	}
	return r.GetByUID(ctx, uid)
}

func (r *memoryStaffRepository) List(_ context.Context, filter StaffFilter) ([]domain.StaffRecord, error) {
	r.mu.RLock()
	result := make([]domain.StaffRecord, 0, len(r.byUID))
	for _, staff := range r.byUID {
		if filter.Role != nil && staff.Role != *filter.Role {
			continue
		}
		result = append(result, staff)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].UID < result[j].UID
	})

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}
