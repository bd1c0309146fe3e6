package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Invalidate records a token as logged out. Re-inserting the same token is
// treated as success so logout stays idempotent.
func (s *Store) Invalidate(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO token_blacklist (token, created_at) VALUES ($1, $2)`,
		token, s.now())
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether the token has been invalidated.
func (s *Store) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM token_blacklist WHERE token = $1`, token).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return true, nil
}

// PurgeExpired deletes blacklist rows created before the cutoff and returns
// how many were removed.
func (s *Store) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM token_blacklist WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge blacklist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read purge result: %w", err)
	}
	return affected, nil
}
