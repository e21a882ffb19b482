package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const tokenKey = "token"

// credentialRepo keeps the bearer token in a single key/value row.
type credentialRepo struct {
	s *Store
}

func (r *credentialRepo) Token(ctx context.Context) (string, error) {
	q := sqlite().Select("value").
		From(sqlite().Table(tableCredentials)).
		Where(entsql.EQ("key", tokenKey))

	var token string
	if err := r.s.queryRow(ctx, q).Scan(&token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func (r *credentialRepo) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return r.Clear(ctx)
	}
	q := sqlite().Insert(tableCredentials).
		Columns("key", "value", "updated_at").
		Values(tokenKey, token, r.s.stamp()).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues())
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *credentialRepo) Clear(ctx context.Context) error {
	q := sqlite().Delete(tableCredentials).Where(entsql.EQ("key", tokenKey))
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
