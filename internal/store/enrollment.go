package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type enrollmentRepo struct {
	db *sql.DB
}

func (r *enrollmentRepo) Enroll(ctx context.Context, userID, pathID string, now time.Time) (*Enrollment, error) {
	var e *Enrollment
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		prev, err := getEnrollment(ctx, tx, userID, pathID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if prev != nil && prev.Active {
			e = prev
			return nil
		}

		query, args := builder().Insert("enrollments").
			Columns("user_id", "path_id", "active", "enrolled_at").
			Values(userID, pathID, true, now.UnixMilli()).
			OnConflict(
				entsql.ConflictColumns("user_id", "path_id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.Set("active", true)
				}),
			).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("enroll: %w", err)
		}

		query, args = builder().Update("learning_paths").
			Add("total_enrollments", 1).
			Where(entsql.EQ("id", pathID)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("count enrollment: %w", err)
		}

		e, err = getEnrollment(ctx, tx, userID, pathID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *enrollmentRepo) Unenroll(ctx context.Context, userID, pathID string) error {
	query, args := builder().Update("enrollments").
		Set("active", false).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("path_id", pathID),
		)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("unenroll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unenroll: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("enrollment of %q in %q: %w", userID, pathID, ErrNotFound)
	}
	return nil
}

func (r *enrollmentRepo) Get(ctx context.Context, userID, pathID string) (*Enrollment, error) {
	return getEnrollment(ctx, r.db, userID, pathID)
}

func getEnrollment(ctx context.Context, q querier, userID, pathID string) (*Enrollment, error) {
	query, args := builder().Select("user_id", "path_id", "active", "enrolled_at").
		From(entsql.Table("enrollments")).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("path_id", pathID),
		)).
		Query()

	e, err := scanEnrollment(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("enrollment of %q in %q: %w", userID, pathID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return e, nil
}

func (r *enrollmentRepo) List(ctx context.Context, userID string) ([]Enrollment, error) {
	query, args := builder().Select("user_id", "path_id", "active", "enrolled_at").
		From(entsql.Table("enrollments")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("enrolled_at").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var out []Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanEnrollment(row rowScanner) (*Enrollment, error) {
	var (
		e  Enrollment
		at int64
	)
	if err := row.Scan(&e.UserID, &e.PathID, &e.Active, &at); err != nil {
		return nil, err
	}
	e.EnrolledAt = time.UnixMilli(at)
	return &e, nil
}
