package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollment(t *testing.T) {
	s := openTestStore(t)
	repo := s.EnrollmentRepo()
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	e, err := repo.Enroll(ctx, "alice", "go", now)
	require.NoError(t, err)
	assert.True(t, e.Active)
	assert.True(t, e.EnrolledAt.Equal(now))

	require.NoError(t, repo.Unenroll(ctx, "alice", "go"))
	e, err = repo.Get(ctx, "alice", "go")
	require.NoError(t, err)
	assert.False(t, e.Active)

	e, err = repo.Enroll(ctx, "alice", "go", now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, e.Active)
	assert.True(t, e.EnrolledAt.Equal(now), "re-enrolling keeps the original date")

	list, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUnenrollMissing(t *testing.T) {
	s := openTestStore(t)
	err := s.EnrollmentRepo().Unenroll(context.Background(), "nobody", "go")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnrollmentCountsActivations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.ContentRepo().Import(ctx, testCatalog())
	require.NoError(t, err)

	repo := s.EnrollmentRepo()
	now := time.UnixMilli(1_700_000_000_000)
	total := func() int {
		t.Helper()
		p, err := s.ContentRepo().Path(ctx, "go")
		require.NoError(t, err)
		return p.TotalEnrollments
	}

	_, err = repo.Enroll(ctx, "alice", "go", now)
	require.NoError(t, err)
	_, err = repo.Enroll(ctx, "bob", "go", now)
	require.NoError(t, err)
	assert.Equal(t, 2, total())

	_, err = repo.Enroll(ctx, "alice", "go", now)
	require.NoError(t, err)
	assert.Equal(t, 2, total(), "enrolling while active does not count")

	require.NoError(t, repo.Unenroll(ctx, "alice", "go"))
	_, err = repo.Enroll(ctx, "alice", "go", now)
	require.NoError(t, err)
	assert.Equal(t, 3, total(), "reactivation counts")

	_, err = s.ContentRepo().Import(ctx, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, 3, total(), "re-import keeps the counter")

	list, err := s.ContentRepo().ListPaths(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].TotalEnrollments)
}
