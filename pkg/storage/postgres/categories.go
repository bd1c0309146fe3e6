package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recipevault/recipevault/pkg/storage"
)

const categoryColumns = `id, category_name, created_by, created_at, updated_at`

// CreateCategory persists a category for the owner. The name is expected to
// be normalized already; uniqueness is per owner on the normalized form.
func (s *Store) CreateCategory(ctx context.Context, ownerID int64, name string) (*storage.Category, error) {
	taken, err := s.categoryNameTaken(ctx, ownerID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, storage.ErrDuplicate
	}

	now := s.now()
	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO categories (category_name, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, name, ownerID, now, now).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	return &storage.Category{
		ID:           id,
		CategoryName: name,
		CreatedBy:    ownerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetCategory fetches one category scoped to its owner.
func (s *Store) GetCategory(ctx context.Context, ownerID, id int64) (*storage.Category, error) {
	return scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND created_by = $2`,
		id, ownerID))
}

// ListCategories returns one page of the owner's categories plus the total count.
func (s *Store) ListCategories(ctx context.Context, ownerID int64, page storage.Page) ([]*storage.Category, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE created_by = $1`, ownerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE created_by = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		ownerID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories, err := collectCategories(rows)
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// SearchCategories returns the owner's categories whose name contains the
// query, case-insensitively, plus the total match count.
func (s *Store) SearchCategories(ctx context.Context, ownerID int64, query string, page storage.Page) ([]*storage.Category, int, error) {
	pattern := "%" + escapeLike(query) + "%"

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE created_by = $1 AND LOWER(category_name) LIKE LOWER($2) ESCAPE '\'`,
		ownerID, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count category matches: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE created_by = $1 AND LOWER(category_name) LIKE LOWER($2) ESCAPE '\'
		 ORDER BY id LIMIT $3 OFFSET $4`,
		ownerID, pattern, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search categories: %w", err)
	}
	defer rows.Close()

	categories, err := collectCategories(rows)
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// UpdateCategory renames a category, re-checking per-owner uniqueness.
func (s *Store) UpdateCategory(ctx context.Context, ownerID, id int64, name string) (*storage.Category, error) {
	existing, err := s.GetCategory(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.categoryNameTaken(ctx, ownerID, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, storage.ErrDuplicate
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		UPDATE categories SET category_name = $1, updated_at = $2 WHERE id = $3 AND created_by = $4
	`, name, now, id, ownerID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	existing.CategoryName = name
	existing.UpdatedAt = now
	return existing, nil
}

// DeleteCategory removes the category; the schema cascades to its recipes.
func (s *Store) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1 AND created_by = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// categoryNameTaken reports whether another category of the same owner
// already uses the name. excludeID skips the category being renamed.
func (s *Store) categoryNameTaken(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE created_by = $1 AND category_name = $2 AND id <> $3`,
		ownerID, name, excludeID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return true, nil
}

func scanCategory(row *sql.Row) (*storage.Category, error) {
	c := &storage.Category{}
	err := row.Scan(&c.ID, &c.CategoryName, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	return c, nil
}

func collectCategories(rows *sql.Rows) ([]*storage.Category, error) {
	categories := make([]*storage.Category, 0)
	for rows.Next() {
		c := &storage.Category{}
		if err := rows.Scan(&c.ID, &c.CategoryName, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}
