package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return &Catalog{Paths: []CatalogPath{{
		LearningPath: LearningPath{ID: "go", Slug: "go-basics", Title: "Go Basics", Difficulty: "beginner"},
		Modules: []CatalogModule{
			{
				ID: "m2", Title: "Functions", Order: 2,
				Contents: []CatalogContent{
					{ID: "c3", Title: "Closures", Type: ContentText, Order: 1, Body: "A closure captures variables."},
				},
			},
			{
				ID: "m1", Title: "Variables", Order: 1,
				Contents: []CatalogContent{
					{ID: "c2", Title: "Constants", Type: ContentVideo, Order: 2},
					{
						ID: "c1", Title: "Declaring variables", Type: ContentText, Order: 1,
						Body:     "Use var or :=.",
						Slides:   []Slide{{Title: "Short form", Content: "x := 1"}},
						Passages: []string{"var declares a variable", "short declarations infer types"},
					},
				},
			},
		},
	}}}
}

func TestImportAndRead(t *testing.T) {
	s := openTestStore(t)
	repo := s.ContentRepo()
	ctx := context.Background()

	n, err := repo.Import(ctx, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	p, err := repo.Path(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "go-basics", p.Slug)

	mods, err := repo.ModuleIDs(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, mods)

	contents, err := repo.ContentIDs(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, contents)

	c, err := repo.Content(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "m1", c.ModuleID)
	assert.Equal(t, ContentText, c.Type)
	assert.Equal(t, []Slide{{Title: "Short form", Content: "x := 1"}}, c.Slides)

	empty, err := repo.Content(ctx, "c2")
	require.NoError(t, err)
	assert.Empty(t, empty.Slides)

	m, err := repo.Module(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, "go", m.PathID)
	assert.Equal(t, 2, m.Order)

	passages, err := s.PassageRepo().List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "c1", passages[0].Metadata["content_id"])
}

func TestImportIsRepeatable(t *testing.T) {
	s := openTestStore(t)
	repo := s.ContentRepo()
	ctx := context.Background()

	_, err := repo.Import(ctx, testCatalog())
	require.NoError(t, err)

	cat := testCatalog()
	cat.Paths[0].Title = "Go Fundamentals"
	_, err = repo.Import(ctx, cat)
	require.NoError(t, err)

	p, err := repo.Path(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "Go Fundamentals", p.Title)

	passages, err := s.PassageRepo().List(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, passages, 2, "re-import replaces passages")

	paths, err := repo.ListPaths(ctx)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestImportRejectsUnknownType(t *testing.T) {
	s := openTestStore(t)
	cat := testCatalog()
	cat.Paths[0].Modules[0].Contents[0].Type = "podcast"

	_, err := s.ContentRepo().Import(context.Background(), cat)
	require.Error(t, err)

	_, err = s.ContentRepo().Path(context.Background(), "go")
	assert.ErrorIs(t, err, ErrNotFound, "failed import must roll back")
}

func TestContentNotFound(t *testing.T) {
	s := openTestStore(t)
	repo := s.ContentRepo()
	ctx := context.Background()

	_, err := repo.Content(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Module(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Path(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err := repo.ContentIDs(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
