package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recipevault/recipevault/pkg/storage"
)

const recipeColumns = `id, recipe_name, recipe_ingredients, recipe_methods, category_id, created_at, updated_at`

// CreateRecipe persists a recipe under its category. Uniqueness is per
// category on the normalized name.
func (s *Store) CreateRecipe(ctx context.Context, categoryID int64, name, ingredients, methods string) (*storage.Recipe, error) {
	taken, err := s.recipeNameTaken(ctx, categoryID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, storage.ErrDuplicate
	}

	now := s.now()
	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO recipes (recipe_name, recipe_ingredients, recipe_methods, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, name, ingredients, methods, categoryID, now, now).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert recipe: %w", err)
	}

	return &storage.Recipe{
		ID:          id,
		RecipeName:  name,
		Ingredients: ingredients,
		Methods:     methods,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetRecipe fetches one recipe scoped to its category.
func (s *Store) GetRecipe(ctx context.Context, categoryID, id int64) (*storage.Recipe, error) {
	return scanRecipe(s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = $1 AND category_id = $2`,
		id, categoryID))
}

// ListRecipes returns one page of the category's recipes plus the total count.
func (s *Store) ListRecipes(ctx context.Context, categoryID int64, page storage.Page) ([]*storage.Recipe, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE category_id = $1`, categoryID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE category_id = $1 ORDER BY id LIMIT $2 OFFSET $3`,
		categoryID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes, err := collectRecipes(rows)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// SearchRecipes returns the category's recipes whose name contains the query,
// case-insensitively, plus the total match count.
func (s *Store) SearchRecipes(ctx context.Context, categoryID int64, query string, page storage.Page) ([]*storage.Recipe, int, error) {
	pattern := "%" + escapeLike(query) + "%"

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recipes WHERE category_id = $1 AND LOWER(recipe_name) LIKE LOWER($2) ESCAPE '\'`,
		categoryID, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count recipe matches: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes
		 WHERE category_id = $1 AND LOWER(recipe_name) LIKE LOWER($2) ESCAPE '\'
		 ORDER BY id LIMIT $3 OFFSET $4`,
		categoryID, pattern, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search recipes: %w", err)
	}
	defer rows.Close()

	recipes, err := collectRecipes(rows)
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// UpdateRecipe rewrites a recipe's fields, re-checking per-category uniqueness.
func (s *Store) UpdateRecipe(ctx context.Context, categoryID, id int64, name, ingredients, methods string) (*storage.Recipe, error) {
	existing, err := s.GetRecipe(ctx, categoryID, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.recipeNameTaken(ctx, categoryID, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, storage.ErrDuplicate
	}

	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		UPDATE recipes SET recipe_name = $1, recipe_ingredients = $2, recipe_methods = $3, updated_at = $4
		WHERE id = $5 AND category_id = $6
	`, name, ingredients, methods, now, id, categoryID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	existing.RecipeName = name
	existing.Ingredients = ingredients
	existing.Methods = methods
	existing.UpdatedAt = now
	return existing, nil
}

// DeleteRecipe removes one recipe from its category.
func (s *Store) DeleteRecipe(ctx context.Context, categoryID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = $1 AND category_id = $2`, id, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
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

func (s *Store) recipeNameTaken(ctx context.Context, categoryID int64, name string, excludeID int64) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM recipes WHERE category_id = $1 AND recipe_name = $2 AND id <> $3`,
		categoryID, name, excludeID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check recipe name: %w", err)
	}
	return true, nil
}

func scanRecipe(row *sql.Row) (*storage.Recipe, error) {
	r := &storage.Recipe{}
	err := row.Scan(&r.ID, &r.RecipeName, &r.Ingredients, &r.Methods, &r.CategoryID, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan recipe: %w", err)
	}
	return r, nil
}

func collectRecipes(rows *sql.Rows) ([]*storage.Recipe, error) {
	recipes := make([]*storage.Recipe, 0)
	for rows.Next() {
		r := &storage.Recipe{}
		if err := rows.Scan(&r.ID, &r.RecipeName, &r.Ingredients, &r.Methods, &r.CategoryID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return recipes, nil
}
