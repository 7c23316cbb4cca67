package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type passageRepo struct {
	db *sql.DB
}

func (r *passageRepo) Add(ctx context.Context, p Passage) (int64, error) {
	return insertPassage(ctx, r.db, p)
}

func (r *passageRepo) List(ctx context.Context, contentID string) ([]Passage, error) {
	sel := builder().Select("id", "content_id", "text", "metadata").
		From(entsql.Table("passages")).
		OrderBy("id")
	if contentID != "" {
		sel = sel.Where(entsql.EQ("content_id", contentID))
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list passages: %w", err)
	}
	defer rows.Close()

	var out []Passage
	for rows.Next() {
		var (
			p    Passage
			meta string
		)
		if err := rows.Scan(&p.ID, &p.ContentID, &p.Text, &meta); err != nil {
			return nil, fmt.Errorf("scan passage: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &p.Metadata); err != nil {
			return nil, fmt.Errorf("decode passage %d metadata: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func insertPassage(ctx context.Context, q querier, p Passage) (int64, error) {
	meta := p.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return 0, fmt.Errorf("encode passage metadata: %w", err)
	}

	query, args := builder().Insert("passages").
		Columns("content_id", "text", "metadata").
		Values(p.ContentID, p.Text, string(metaJSON)).
		Query()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert passage: %w", err)
	}
	return res.LastInsertId()
}
