package progress

import (
	"context"
	"errors"

	"github.com/pathwise/pathwise/internal/apperr"
	"github.com/pathwise/pathwise/internal/store"
)

// Enroll activates the user's enrollment in a path and makes sure the path
// record exists, moving a not-started record to in_progress. Progress
// recording never checks enrollment.
func (a *Aggregator) Enroll(ctx context.Context, userID, pathID string) (*store.Enrollment, error) {
	if userID == "" {
		return nil, apperr.Errorf(apperr.KindValidation, opEnroll, "user id is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.catalog.Path(ctx, pathID); err != nil {
		return nil, apperr.FromStore(opEnroll, err)
	}

	now := a.now()
	e, err := a.enrollments.Enroll(ctx, userID, pathID, now)
	if err != nil {
		return nil, apperr.FromStore(opEnroll, err)
	}

	key := store.ProgressKey{UserID: userID, PathID: pathID}
	_, err = a.progress.Update(ctx, key, now, func(p *store.Progress) error {
		if p.Status == store.StatusNotStarted {
			p.Status = store.StatusInProgress
		}
		p.LastAccessed = now
		return nil
	})
	if err != nil {
		return nil, apperr.FromStore(opEnroll, err)
	}

	a.log.Info("enrolled", "user", userID, "path", pathID)
	return e, nil
}

// Unenroll deactivates the enrollment. Progress records are kept.
func (a *Aggregator) Unenroll(ctx context.Context, userID, pathID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.enrollments.Unenroll(ctx, userID, pathID); err != nil {
		return apperr.FromStore(opUnenroll, err)
	}
	a.log.Info("unenrolled", "user", userID, "path", pathID)
	return nil
}

// Enrollments lists the user's enrollments, inactive ones included.
func (a *Aggregator) Enrollments(ctx context.Context, userID string) ([]store.Enrollment, error) {
	if userID == "" {
		return nil, apperr.Errorf(apperr.KindValidation, opEnrolled, "user id is required")
	}
	list, err := a.enrollments.List(ctx, userID)
	if err != nil {
		return nil, apperr.FromStore(opEnrolled, err)
	}
	return list, nil
}

// Report is every progress record of a user in one path.
type Report struct {
	Path *store.LearningPath

	// Enrollment is nil when the user never enrolled.
	Enrollment *store.Enrollment

	// Records lists the path record, then module records, then content
	// records.
	Records []store.Progress
}

// PathReport returns the user's progress in a path.
func (a *Aggregator) PathReport(ctx context.Context, userID, pathID string) (*Report, error) {
	path, err := a.catalog.Path(ctx, pathID)
	if err != nil {
		return nil, apperr.FromStore(opPathState, err)
	}

	r := &Report{Path: path}

	e, err := a.enrollments.Get(ctx, userID, pathID)
	switch {
	case err == nil:
		r.Enrollment = e
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.FromStore(opPathState, err)
	}

	r.Records, err = a.progress.List(ctx, userID, pathID)
	if err != nil {
		return nil, apperr.FromStore(opPathState, err)
	}
	return r, nil
}
