package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathwise/pathwise/internal/apperr"
	"github.com/pathwise/pathwise/internal/store"
)

func TestEnroll_CreatesPathRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.agg.Enroll(ctx, "u1", "go")
	require.NoError(t, err)
	assert.True(t, e.Active)

	p := f.get(t, store.ProgressKey{UserID: "u1", PathID: "go"})
	assert.Equal(t, store.StatusInProgress, p.Status)

	// Enrolling twice keeps one record.
	_, err = f.agg.Enroll(ctx, "u1", "go")
	require.NoError(t, err)
	recs, err := f.store.ProgressRepo().List(ctx, "u1", "go")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestEnroll_KeepsCompletedPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, c := range []string{"c1", "c2", "c3", "c4", "c5"} {
		_, err := f.agg.MarkContentComplete(ctx, "u1", c)
		require.NoError(t, err)
	}
	_, err := f.agg.Enroll(ctx, "u1", "go")
	require.NoError(t, err)

	assert.Equal(t, store.StatusCompleted, f.get(t, store.ProgressKey{UserID: "u1", PathID: "go"}).Status)
}

func TestEnroll_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.agg.Enroll(ctx, "u1", "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)

	_, err = f.agg.Enroll(ctx, "", "go")
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	err = f.agg.Unenroll(ctx, "u1", "go")
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
}

func TestUnenroll_KeepsProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.agg.Enroll(ctx, "u1", "go")
	require.NoError(t, err)
	_, err = f.agg.MarkContentComplete(ctx, "u1", "c4")
	require.NoError(t, err)

	require.NoError(t, f.agg.Unenroll(ctx, "u1", "go"))

	rep, err := f.agg.PathReport(ctx, "u1", "go")
	require.NoError(t, err)
	require.NotNil(t, rep.Enrollment)
	assert.False(t, rep.Enrollment.Active)
	assert.Len(t, rep.Records, 3)
}

func TestPathReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rep, err := f.agg.PathReport(ctx, "u1", "go")
	require.NoError(t, err)
	assert.Equal(t, "Go", rep.Path.Title)
	assert.Nil(t, rep.Enrollment)
	assert.Empty(t, rep.Records)

	for _, c := range []string{"c4", "c1"} {
		_, err := f.agg.MarkContentComplete(ctx, "u1", c)
		require.NoError(t, err)
	}

	rep, err = f.agg.PathReport(ctx, "u1", "go")
	require.NoError(t, err)
	var levels []store.Granularity
	for _, r := range rep.Records {
		levels = append(levels, r.Granularity())
	}
	assert.Equal(t, []store.Granularity{
		store.GranularityPath,
		store.GranularityModule, store.GranularityModule,
		store.GranularityContent, store.GranularityContent,
	}, levels)

	_, err = f.agg.PathReport(ctx, "u1", "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
}

func TestEnrollments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, err := f.agg.Enrollments(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, p := range []string{"go", "solo"} {
		_, err := f.agg.Enroll(ctx, "u1", p)
		require.NoError(t, err)
	}
	_, err = f.agg.Enroll(ctx, "u1", "go")
	require.NoError(t, err)
	require.NoError(t, f.agg.Unenroll(ctx, "u1", "solo"))

	list, err = f.agg.Enrollments(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	active := map[string]bool{}
	for _, e := range list {
		active[e.PathID] = e.Active
	}
	assert.Equal(t, map[string]bool{"go": true, "solo": false}, active)

	path, err := f.store.ContentRepo().Path(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, 1, path.TotalEnrollments, "repeat enrollment is not counted")

	_, err = f.agg.Enrollments(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
}
