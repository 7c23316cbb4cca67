package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// progressRepo implements ProgressRepo.
//
// Creation is INSERT ... ON CONFLICT (user_id, scope) DO NOTHING followed by
// a read, so concurrent creators of one key converge on a single row.
// Updates run the read-modify-write inside one transaction on the
// store's single connection.
type progressRepo struct {
	db *sql.DB
}

var progressColumns = []string{
	"id", "user_id", "path_id", "module_id", "content_id",
	"status", "percentage", "time_spent", "score", "attempts",
	"started_at", "completed_at", "last_accessed",
}

func (r *progressRepo) Get(ctx context.Context, key ProgressKey) (*Progress, error) {
	return getProgress(ctx, r.db, key)
}

func (r *progressRepo) GetOrCreate(ctx context.Context, key ProgressKey, now time.Time) (*Progress, error) {
	if err := createProgress(ctx, r.db, key, now); err != nil {
		return nil, err
	}
	return getProgress(ctx, r.db, key)
}

func (r *progressRepo) Update(ctx context.Context, key ProgressKey, now time.Time, fn func(p *Progress) error) (*Progress, error) {
	var out *Progress
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := createProgress(ctx, tx, key, now); err != nil {
			return err
		}
		p, err := getProgress(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := saveProgress(ctx, tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRepo) CountCompletedContent(ctx context.Context, userID string, contentIDs []string) (int, error) {
	return r.countCompleted(ctx, userID, GranularityContent, "content_id", contentIDs)
}

func (r *progressRepo) CountCompletedModules(ctx context.Context, userID string, moduleIDs []string) (int, error) {
	return r.countCompleted(ctx, userID, GranularityModule, "module_id", moduleIDs)
}

func (r *progressRepo) countCompleted(ctx context.Context, userID string, g Granularity, column string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in := make([]any, len(ids))
	for i, id := range ids {
		in[i] = id
	}

	query, args := builder().Select("COUNT(*)").
		From(entsql.Table("progress")).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("granularity", string(g)),
			entsql.EQ("status", string(StatusCompleted)),
			entsql.In(column, in...),
		)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count completed %s records: %w", g, err)
	}
	return n, nil
}

func (r *progressRepo) List(ctx context.Context, userID, pathID string) ([]Progress, error) {
	query, args := builder().Select(progressColumns...).
		From(entsql.Table("progress")).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("path_id", pathID),
		)).
		OrderBy("scope").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var out []Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Scope order puts a parent before its children; group by level.
	ordered := make([]Progress, 0, len(out))
	for _, g := range []Granularity{GranularityPath, GranularityModule, GranularityContent} {
		for _, p := range out {
			if p.Granularity() == g {
				ordered = append(ordered, p)
			}
		}
	}
	return ordered, nil
}

func createProgress(ctx context.Context, q querier, key ProgressKey, now time.Time) error {
	query, args := builder().Insert("progress").
		Columns(
			"id", "user_id", "path_id", "module_id", "content_id",
			"granularity", "scope", "status", "started_at", "last_accessed",
		).
		Values(
			uuid.NewString(), key.UserID, key.PathID, nullString(key.ModuleID), nullString(key.ContentID),
			string(key.Granularity()), key.Scope(), string(StatusNotStarted), now.UnixMilli(), now.UnixMilli(),
		).
		OnConflict(
			entsql.ConflictColumns("user_id", "scope"),
			entsql.DoNothing(),
		).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create progress %s: %w", key.Scope(), err)
	}
	return nil
}

func getProgress(ctx context.Context, q querier, key ProgressKey) (*Progress, error) {
	query, args := builder().Select(progressColumns...).
		From(entsql.Table("progress")).
		Where(entsql.And(
			entsql.EQ("user_id", key.UserID),
			entsql.EQ("scope", key.Scope()),
		)).
		Query()

	p, err := scanProgress(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("progress %s of %q: %w", key.Scope(), key.UserID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return p, nil
}

func saveProgress(ctx context.Context, q querier, p *Progress) error {
	var completedAt sql.NullInt64
	if p.CompletedAt != nil {
		completedAt = sql.NullInt64{Int64: p.CompletedAt.UnixMilli(), Valid: true}
	}
	var score sql.NullFloat64
	if p.Score != nil {
		score = sql.NullFloat64{Float64: *p.Score, Valid: true}
	}

	query, args := builder().Update("progress").
		Set("status", string(p.Status)).
		Set("percentage", p.Percentage).
		Set("time_spent", p.TimeSpent).
		Set("score", score).
		Set("attempts", p.Attempts).
		Set("completed_at", completedAt).
		Set("last_accessed", p.LastAccessed.UnixMilli()).
		Where(entsql.EQ("id", p.ID)).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress %s: %w", p.Key.Scope(), err)
	}
	return nil
}

func scanProgress(row rowScanner) (*Progress, error) {
	var (
		p                     Progress
		moduleID, contentID   sql.NullString
		score                 sql.NullFloat64
		startedAt, accessedAt int64
		completedAt           sql.NullInt64
	)
	err := row.Scan(
		&p.ID, &p.Key.UserID, &p.Key.PathID, &moduleID, &contentID,
		&p.Status, &p.Percentage, &p.TimeSpent, &score, &p.Attempts,
		&startedAt, &completedAt, &accessedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Key.ModuleID = moduleID.String
	p.Key.ContentID = contentID.String
	if score.Valid {
		s := score.Float64
		p.Score = &s
	}
	p.StartedAt = time.UnixMilli(startedAt)
	p.LastAccessed = time.UnixMilli(accessedAt)
	if completedAt.Valid {
		t := time.UnixMilli(completedAt.Int64)
		p.CompletedAt = &t
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
