package repository

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/spec-kit/clinic-pos/internal/domain"
)

// CachedDirectory is a read-through cache in front of a StaffRepository.
// Only successful lookups are cached.
type CachedDirectory struct {
	StaffRepository
	cache   *gocache.Cache
	enabled bool
}

// NewCachedDirectory wraps repo with an in-process cache. A non-positive ttl
// disables caching.
func NewCachedDirectory(repo StaffRepository, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 {
		return &CachedDirectory{StaffRepository: repo, cache: gocache.New(gocache.NoExpiration, 0)}
	}
	return &CachedDirectory{StaffRepository: repo, cache: gocache.New(ttl, 2*ttl), enabled: true}
}

// GetByUID returns the cached record or loads it from the repository.
func (d *CachedDirectory) GetByUID(ctx context.Context, uid string) (*domain.StaffRecord, error) {
	if v, ok := d.cache.Get(uid); ok {
		rec := *v.(*domain.StaffRecord)
		return &rec, nil
	}
	rec, err := d.StaffRepository.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if d.enabled {
		stored := *rec
		d.cache.SetDefault(uid, &stored)
	}
	return rec, nil
}

// UpdatePassword writes through and drops the cached entry.
func (d *CachedDirectory) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	err := d.StaffRepository.UpdatePassword(ctx, uid, passwordHash)
	d.cache.Delete(uid)
	return err
}

// Invalidate drops a cached record.
func (d *CachedDirectory) Invalidate(uid string) {
	d.cache.Delete(uid)
}
