package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recipevault/recipevault/pkg/storage"
)

const userColumns = `id, email, username, password_hash, secret_word_hash, created_at, updated_at`

// CreateUser persists a new identity record. The email is expected to be
// normalized already. Returns storage.ErrDuplicate when the email is taken,
// whether caught by the pre-check or by the unique constraint under race.
func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash, secretHash string) (*storage.User, error) {
	var existing int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = $1`, email).Scan(&existing)
	if err == nil {
		return nil, storage.ErrDuplicate
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	now := s.now()
	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, username, password_hash, secret_word_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, email, username, passwordHash, secretHash, now, now).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &storage.User{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		SecretHash:   secretHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetUserByEmail looks up a user by normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetUserByID looks up a user by id.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*storage.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UpdatePassword replaces the stored password hash and bumps updated_at.
func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3
	`, passwordHash, s.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*storage.User, error) {
	u := &storage.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.SecretHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}
