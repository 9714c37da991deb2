// Package landing chooses where a freshly authenticated principal lands.
package landing

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/clinic-pos/internal/access"
	"github.com/spec-kit/clinic-pos/internal/domain"
)

// StaffDirectory resolves staff records by uid.
type StaffDirectory interface {
	GetByUID(ctx context.Context, uid string) (*domain.StaffRecord, error)
}

// Result labels how a landing route was chosen.
type Result string

const (
	ResultDoctor   Result = "doctor"
	ResultDefault  Result = "default"
	ResultFallback Result = "fallback"
)

// Recorder observes resolutions. It may be nil.
type Recorder interface {
	RecordLandingResult(result string)
}

// lookupTimeout bounds a shared directory lookup, which outlives the
// caller that started it.
const lookupTimeout = 5 * time.Second

// Resolver maps a principal to its landing route.
type Resolver struct {
	directory StaffDirectory
	logger    *zap.Logger
	recorder  Recorder
	group     singleflight.Group
	timeout   time.Duration
}

// NewResolver builds a Resolver. A nil logger is replaced with a no-op logger.
func NewResolver(directory StaffDirectory, logger *zap.Logger, recorder Recorder) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{directory: directory, logger: logger, recorder: recorder, timeout: lookupTimeout}
}

// ResolveLanding looks up uid's staff record and returns the doctor landing
// route for doctors and the default route otherwise. Lookup failures are
// logged and fall back to the default route.
func (r *Resolver) ResolveLanding(ctx context.Context, uid string) string {
	route, result := r.resolve(ctx, uid)
	if r.recorder != nil {
		r.recorder.RecordLandingResult(string(result))
	}
	return route
}

func (r *Resolver) resolve(ctx context.Context, uid string) (string, Result) {
	if r.directory == nil {
		r.logger.Warn("staff directory not configured; using default landing", zap.String("uid", uid))
		return access.DefaultLandingRoute, ResultFallback
	}

	// The lookup is shared between callers, so it must not be cancelled by
	// whichever caller happened to start it. Each caller still gives up on
	// its own context.
	ch := r.group.DoChan(uid, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		staff, err := r.directory.GetByUID(lookupCtx, uid)
		if err != nil {
			return nil, err
		}
		return staff, nil
	})

	var (
		v      any
		err    error
		shared bool
	)
	select {
	case res := <-ch:
		v, err, shared = res.Val, res.Err, res.Shared
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		r.logger.Warn("staff lookup failed; using default landing",
			zap.String("uid", uid),
			zap.Bool("shared", shared),
			zap.Error(err))
		return access.DefaultLandingRoute, ResultFallback
	}
	staff, _ := v.(*domain.StaffRecord)
	if staff == nil {
		r.logger.Warn("staff lookup returned no record; using default landing", zap.String("uid", uid))
		return access.DefaultLandingRoute, ResultFallback
	}

	if staff.Role == domain.RoleDoctor {
		return access.DoctorLandingRoute, ResultDoctor
	}
	return access.DefaultLandingRoute, ResultDefault
}
