package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/stylequiz/internal/vark"
)

type varkRepo struct {
	s *Store
}

func (r *varkRepo) Save(ctx context.Context, rec VarkRecord) error {
	if !rec.Type.Valid() {
		return fmt.Errorf("save vark result: %w", vark.ErrUnknownStyle)
	}
	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = r.s.now()
	}
	d := rec.Distribution
	q := sqlite().Insert(tableVark).
		Columns("sequence", "timestamp", "visual", "auditory", "read_write",
			"kinesthetic", "vark_type", "synced").
		Values(seq, ts.UnixMilli(), d.Visual, d.Auditory, d.ReadWrite,
			d.Kinesthetic, string(rec.Type), rec.Synced)
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("save vark result: %w", err)
	}
	return nil
}

func (r *varkRepo) Latest(ctx context.Context) (*VarkRecord, error) {
	q := sqlite().Select("visual", "auditory", "read_write", "kinesthetic",
		"vark_type", "synced", "timestamp").
		From(sqlite().Table(tableVark)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1)

	var rec VarkRecord
	var style string
	var ts int64
	d := &rec.Distribution
	err := r.s.queryRow(ctx, q).Scan(&d.Visual, &d.Auditory, &d.ReadWrite,
		&d.Kinesthetic, &style, &rec.Synced, &ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest vark result: %w", err)
	}
	rec.Type = vark.Style(style)
	rec.Timestamp = time.UnixMilli(ts)
	return &rec, nil
}
