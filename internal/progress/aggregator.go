// Package progress rolls learner progress up the content hierarchy:
// content items complete modules, completed modules complete a path.
package progress

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pathwise/pathwise/internal/apperr"
	"github.com/pathwise/pathwise/internal/logger"
	"github.com/pathwise/pathwise/internal/store"
)

const (
	opRecord    = "progress.record"
	opComplete  = "progress.complete"
	opModule    = "progress.recompute_module"
	opPath      = "progress.recompute_path"
	opEnroll    = "progress.enroll"
	opUnenroll  = "progress.unenroll"
	opEnrolled  = "progress.enrollments"
	opPathState = "progress.report"
)

// Catalog is the read side of the content store the aggregator needs.
type Catalog interface {
	Path(ctx context.Context, id string) (*store.LearningPath, error)
	Module(ctx context.Context, id string) (*store.Module, error)
	Content(ctx context.Context, id string) (*store.Content, error)
	ModuleIDs(ctx context.Context, pathID string) ([]string, error)
	ContentIDs(ctx context.Context, moduleID string) ([]string, error)
}

// Options holds optional collaborators.
type Options struct {
	Logger *logger.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Aggregator applies progress events and recomputes the rollups.
//
// Each public operation runs under one mutex, so a content update and the
// rollups it triggers are never interleaved with another operation's.
type Aggregator struct {
	catalog     Catalog
	progress    store.ProgressRepo
	enrollments store.EnrollmentRepo
	now         func() time.Time
	log         *logger.Logger

	mu sync.Mutex
}

// New creates an Aggregator.
func New(catalog Catalog, progress store.ProgressRepo, enrollments store.EnrollmentRepo, opts Options) *Aggregator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		catalog:     catalog,
		progress:    progress,
		enrollments: enrollments,
		now:         now,
		log:         logger.Or(opts.Logger),
	}
}

// ContentUpdate describes a learner's activity on one content item.
type ContentUpdate struct {
	UserID    string
	ContentID string

	// Percentage is clamped to [0, 100].
	Percentage float64

	// TimeDelta is added to time spent, in minutes. Must not be negative.
	TimeDelta int

	// Score, when set, is stored and counts as an attempt.
	Score *float64
}

// Rollup is the state of the three records touched by a content event.
// Module or Path is nil when the level has no children to count.
type Rollup struct {
	Content *store.Progress
	Module  *store.Progress
	Path    *store.Progress
}

// RecordContentProgress applies an activity update and recomputes the
// module and path rollups. A completed item stays completed at 100%; later
// updates still add time, scores and attempts.
func (a *Aggregator) RecordContentProgress(ctx context.Context, u ContentUpdate) (*Rollup, error) {
	if u.TimeDelta < 0 {
		return nil, apperr.Errorf(apperr.KindValidation, opRecord, "time delta must not be negative, got %d", u.TimeDelta)
	}
	if math.IsNaN(u.Percentage) {
		return nil, apperr.Errorf(apperr.KindValidation, opRecord, "percentage is not a number")
	}
	pct := min(max(u.Percentage, 0), 100)

	a.mu.Lock()
	defer a.mu.Unlock()

	key, err := a.contentKey(ctx, opRecord, u.UserID, u.ContentID)
	if err != nil {
		return nil, err
	}

	now := a.now()
	rec, err := a.progress.Update(ctx, key, now, func(p *store.Progress) error {
		p.TimeSpent += u.TimeDelta
		if u.Score != nil {
			s := *u.Score
			p.Score = &s
			p.Attempts++
		}
		p.LastAccessed = now

		if p.Status == store.StatusCompleted {
			return nil
		}
		p.Percentage = pct
		switch {
		case pct >= 100:
			p.Status = store.StatusCompleted
			p.CompletedAt = &now
		case p.Status == store.StatusNotStarted:
			p.Status = store.StatusInProgress
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromStore(opRecord, err)
	}

	a.log.Debug("content progress recorded",
		"user", key.UserID, "content", key.ContentID, "status", rec.Status, "percentage", rec.Percentage)
	return a.rollUp(ctx, key, rec)
}

// MarkContentComplete marks a content item completed at 100%. It is
// idempotent: completed_at keeps the first completion time.
func (a *Aggregator) MarkContentComplete(ctx context.Context, userID, contentID string) (*Rollup, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key, err := a.contentKey(ctx, opComplete, userID, contentID)
	if err != nil {
		return nil, err
	}

	now := a.now()
	rec, err := a.progress.Update(ctx, key, now, func(p *store.Progress) error {
		p.LastAccessed = now
		if p.Status == store.StatusCompleted {
			return nil
		}
		p.Status = store.StatusCompleted
		p.Percentage = 100
		p.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, apperr.FromStore(opComplete, err)
	}
	return a.rollUp(ctx, key, rec)
}

// RecomputeModule derives the module record from its content records.
// It returns nil without writing when the module has no content.
func (a *Aggregator) RecomputeModule(ctx context.Context, userID, moduleID string) (*store.Progress, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recomputeModule(ctx, userID, moduleID)
}

// RecomputePath derives the path record from its module records. Only
// modules with status completed count; a module at 99% counts as zero.
// It returns nil without writing when the path has no modules.
func (a *Aggregator) RecomputePath(ctx context.Context, userID, pathID string) (*store.Progress, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recomputePath(ctx, userID, pathID)
}

func (a *Aggregator) rollUp(ctx context.Context, key store.ProgressKey, content *store.Progress) (*Rollup, error) {
	out := &Rollup{Content: content}

	mod, err := a.recomputeModule(ctx, key.UserID, key.ModuleID)
	if err != nil {
		return nil, err
	}
	out.Module = mod

	path, err := a.recomputePath(ctx, key.UserID, key.PathID)
	if err != nil {
		return nil, err
	}
	out.Path = path
	return out, nil
}

func (a *Aggregator) recomputeModule(ctx context.Context, userID, moduleID string) (*store.Progress, error) {
	m, err := a.catalog.Module(ctx, moduleID)
	if err != nil {
		return nil, apperr.FromStore(opModule, err)
	}
	ids, err := a.catalog.ContentIDs(ctx, moduleID)
	if err != nil {
		return nil, apperr.FromStore(opModule, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	done, err := a.progress.CountCompletedContent(ctx, userID, ids)
	if err != nil {
		return nil, apperr.FromStore(opModule, err)
	}

	key := store.ProgressKey{UserID: userID, PathID: m.PathID, ModuleID: moduleID}
	rec, err := a.writeRollup(ctx, key, done, len(ids))
	if err != nil {
		return nil, apperr.FromStore(opModule, err)
	}
	return rec, nil
}

func (a *Aggregator) recomputePath(ctx context.Context, userID, pathID string) (*store.Progress, error) {
	if _, err := a.catalog.Path(ctx, pathID); err != nil {
		return nil, apperr.FromStore(opPath, err)
	}
	ids, err := a.catalog.ModuleIDs(ctx, pathID)
	if err != nil {
		return nil, apperr.FromStore(opPath, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	done, err := a.progress.CountCompletedModules(ctx, userID, ids)
	if err != nil {
		return nil, apperr.FromStore(opPath, err)
	}

	key := store.ProgressKey{UserID: userID, PathID: pathID}
	rec, err := a.writeRollup(ctx, key, done, len(ids))
	if err != nil {
		return nil, apperr.FromStore(opPath, err)
	}
	return rec, nil
}

// writeRollup stores done/total as the record's percentage and derives
// its status.
func (a *Aggregator) writeRollup(ctx context.Context, key store.ProgressKey, done, total int) (*store.Progress, error) {
	pct := 100 * float64(done) / float64(total)
	now := a.now()
	return a.progress.Update(ctx, key, now, func(p *store.Progress) error {
		p.Percentage = pct
		p.Status = statusFor(pct)
		if p.Status == store.StatusCompleted && p.CompletedAt == nil {
			p.CompletedAt = &now
		}
		p.LastAccessed = now
		return nil
	})
}

func statusFor(pct float64) store.Status {
	switch {
	case pct >= 100:
		return store.StatusCompleted
	case pct > 0:
		return store.StatusInProgress
	default:
		return store.StatusNotStarted
	}
}

// contentKey resolves the full hierarchy key of a content item.
func (a *Aggregator) contentKey(ctx context.Context, op, userID, contentID string) (store.ProgressKey, error) {
	if userID == "" {
		return store.ProgressKey{}, apperr.Errorf(apperr.KindValidation, op, "user id is required")
	}
	c, err := a.catalog.Content(ctx, contentID)
	if err != nil {
		return store.ProgressKey{}, apperr.FromStore(op, err)
	}
	m, err := a.catalog.Module(ctx, c.ModuleID)
	if err != nil {
		return store.ProgressKey{}, apperr.FromStore(op, err)
	}
	return store.ProgressKey{
		UserID:    userID,
		PathID:    m.PathID,
		ModuleID:  m.ID,
		ContentID: c.ID,
	}, nil
}
