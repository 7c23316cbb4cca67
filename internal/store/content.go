package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var pathColumns = []string{"id", "slug", "title", "description", "difficulty", "total_enrollments"}

// fields returns scan targets in pathColumns order.
func (p *LearningPath) fields() []any {
	return []any{&p.ID, &p.Slug, &p.Title, &p.Description, &p.Difficulty, &p.TotalEnrollments}
}

// contentRepo implements ContentRepo.
type contentRepo struct {
	db *sql.DB
}

func (r *contentRepo) Path(ctx context.Context, id string) (*LearningPath, error) {
	query, args := builder().Select(pathColumns...).
		From(entsql.Table("learning_paths")).
		Where(entsql.EQ("id", id)).
		Query()

	var p LearningPath
	err := r.db.QueryRowContext(ctx, query, args...).Scan(p.fields()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("learning path %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get learning path: %w", err)
	}
	return &p, nil
}

func (r *contentRepo) Module(ctx context.Context, id string) (*Module, error) {
	query, args := builder().Select("id", "path_id", "title", "display_order").
		From(entsql.Table("modules")).
		Where(entsql.EQ("id", id)).
		Query()

	var m Module
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.PathID, &m.Title, &m.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("module %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get module: %w", err)
	}
	return &m, nil
}

func (r *contentRepo) Content(ctx context.Context, id string) (*Content, error) {
	query, args := builder().Select(
		"id", "module_id", "title", "content_type", "display_order",
		"body", "slides", "difficulty", "estimated_minutes",
	).
		From(entsql.Table("contents")).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		c      Content
		slides string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.ModuleID, &c.Title, &c.Type, &c.Order,
		&c.Body, &slides, &c.Difficulty, &c.EstimatedMinutes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	if err := json.Unmarshal([]byte(slides), &c.Slides); err != nil {
		return nil, fmt.Errorf("decode slides of content %q: %w", id, err)
	}
	return &c, nil
}

func (r *contentRepo) ModuleIDs(ctx context.Context, pathID string) ([]string, error) {
	query, args := builder().Select("id").
		From(entsql.Table("modules")).
		Where(entsql.EQ("path_id", pathID)).
		OrderBy("display_order").
		Query()
	return queryStrings(ctx, r.db, query, args)
}

func (r *contentRepo) ContentIDs(ctx context.Context, moduleID string) ([]string, error) {
	query, args := builder().Select("id").
		From(entsql.Table("contents")).
		Where(entsql.EQ("module_id", moduleID)).
		OrderBy("display_order").
		Query()
	return queryStrings(ctx, r.db, query, args)
}

func (r *contentRepo) ListPaths(ctx context.Context) ([]LearningPath, error) {
	query, args := builder().Select(pathColumns...).
		From(entsql.Table("learning_paths")).
		OrderBy("title").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list learning paths: %w", err)
	}
	defer rows.Close()

	var paths []LearningPath
	for rows.Next() {
		var p LearningPath
		if err := rows.Scan(p.fields()...); err != nil {
			return nil, fmt.Errorf("scan learning path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (r *contentRepo) Import(ctx context.Context, c *Catalog) (int, error) {
	written := 0
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, p := range c.Paths {
			if p.ID == "" || p.Title == "" {
				return fmt.Errorf("learning path needs id and title (slug %q)", p.Slug)
			}
			slug := p.Slug
			if slug == "" {
				slug = p.ID
			}
			difficulty := p.Difficulty
			if difficulty == "" {
				difficulty = "beginner"
			}
			query, args := builder().Insert("learning_paths").
				Columns("id", "slug", "title", "description", "difficulty").
				Values(p.ID, slug, p.Title, p.Description, difficulty).
				OnConflict(
					entsql.ConflictColumns("id"),
					entsql.ResolveWithNewValues(),
				).
				Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert learning path %q: %w", p.ID, err)
			}

			for _, m := range p.Modules {
				if err := importModule(ctx, tx, p.ID, m); err != nil {
					return err
				}
				written += len(m.Contents)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func importModule(ctx context.Context, tx *sql.Tx, pathID string, m CatalogModule) error {
	query, args := builder().Insert("modules").
		Columns("id", "path_id", "title", "display_order").
		Values(m.ID, pathID, m.Title, m.Order).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert module %q: %w", m.ID, err)
	}

	for _, c := range m.Contents {
		if !c.Type.Valid() {
			return fmt.Errorf("content %q: unknown type %q", c.ID, c.Type)
		}
		slides := c.Slides
		if slides == nil {
			slides = []Slide{}
		}
		slidesJSON, err := json.Marshal(slides)
		if err != nil {
			return fmt.Errorf("encode slides of content %q: %w", c.ID, err)
		}

		query, args := builder().Insert("contents").
			Columns("id", "module_id", "title", "content_type", "display_order",
				"body", "slides", "difficulty", "estimated_minutes").
			Values(c.ID, m.ID, c.Title, string(c.Type), c.Order,
				c.Body, string(slidesJSON), c.Difficulty, c.EstimatedMinutes).
			OnConflict(
				entsql.ConflictColumns("id"),
				entsql.ResolveWithNewValues(),
			).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert content %q: %w", c.ID, err)
		}

		if len(c.Passages) == 0 {
			continue
		}
		// Re-importing replaces the passages of the content item.
		query, args = builder().Delete("passages").
			Where(entsql.EQ("content_id", c.ID)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear passages of content %q: %w", c.ID, err)
		}
		for i, text := range c.Passages {
			meta := map[string]string{"content_id": c.ID, "title": c.Title, "chunk": fmt.Sprint(i)}
			if _, err := insertPassage(ctx, tx, Passage{ContentID: c.ID, Text: text, Metadata: meta}); err != nil {
				return err
			}
		}
	}
	return nil
}

func queryStrings(ctx context.Context, q querier, query string, args []any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
