package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for testing
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipevault/recipevault/pkg/storage"
)

// testSchema mirrors the production migrations in SQLite dialect.
var testSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		secret_word_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category_name TEXT NOT NULL,
		created_by INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (created_by, category_name)
	)`,
	`CREATE TABLE recipes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recipe_name TEXT NOT NULL,
		recipe_ingredients TEXT NOT NULL,
		recipe_methods TEXT NOT NULL,
		category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (category_id, recipe_name)
	)`,
	`CREATE TABLE token_blacklist (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		token TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL
	)`,
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	// A single in-memory database; a second connection would see nothing.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range testSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return NewStore(db)
}

func createTestUser(t *testing.T, s *Store, email string) *storage.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), email, "Test User", "password-hash", "secret-hash")
	require.NoError(t, err)
	return user
}

func TestStore_CreateUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "jane@example.com", "Jane Doe", "phash", "shash")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero())

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.CreateUser(ctx, "jane@example.com", "Other", "phash", "shash")
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})
}

func TestStore_GetUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	created := createTestUser(t, s, "jane@example.com")

	byEmail, err := s.GetUserByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "password-hash", byEmail.PasswordHash)
	assert.Equal(t, "secret-hash", byEmail.SecretHash)

	byID, err := s.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byID.Email)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_UpdatePassword(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "jane@example.com")

	require.NoError(t, s.UpdatePassword(ctx, user.ID, "new-hash"))

	reloaded, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.PasswordHash)

	assert.ErrorIs(t, s.UpdatePassword(ctx, 9999, "new-hash"), storage.ErrNotFound)
}

func TestStore_CategoryCRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "jane@example.com")

	category, err := s.CreateCategory(ctx, user.ID, "Desserts")
	require.NoError(t, err)
	assert.NotZero(t, category.ID)
	assert.Equal(t, "Desserts", category.CategoryName)
	assert.Equal(t, user.ID, category.CreatedBy)

	t.Run("duplicate name same owner", func(t *testing.T) {
		_, err := s.CreateCategory(ctx, user.ID, "Desserts")
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})

	t.Run("same name different owner is fine", func(t *testing.T) {
		other := createTestUser(t, s, "john@example.com")
		_, err := s.CreateCategory(ctx, other.ID, "Desserts")
		assert.NoError(t, err)
	})

	t.Run("get", func(t *testing.T) {
		got, err := s.GetCategory(ctx, user.ID, category.ID)
		require.NoError(t, err)
		assert.Equal(t, category.CategoryName, got.CategoryName)
	})

	t.Run("get scoped to owner", func(t *testing.T) {
		other := createTestUser(t, s, "mary@example.com")
		_, err := s.GetCategory(ctx, other.ID, category.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		updated, err := s.UpdateCategory(ctx, user.ID, category.ID, "Baked Goods")
		require.NoError(t, err)
		assert.Equal(t, "Baked Goods", updated.CategoryName)
		assert.False(t, updated.UpdatedAt.Before(category.UpdatedAt))
	})

	t.Run("update to taken name", func(t *testing.T) {
		second, err := s.CreateCategory(ctx, user.ID, "Soups")
		require.NoError(t, err)
		_, err = s.UpdateCategory(ctx, user.ID, second.ID, "Baked Goods")
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})

	t.Run("update keeping own name", func(t *testing.T) {
		_, err := s.UpdateCategory(ctx, user.ID, category.ID, "Baked Goods")
		assert.NoError(t, err)
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := s.UpdateCategory(ctx, user.ID, 9999, "Anything")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteCategory(ctx, user.ID, category.ID))
		_, err := s.GetCategory(ctx, user.ID, category.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.DeleteCategory(ctx, user.ID, category.ID), storage.ErrNotFound)
	})
}

func TestStore_ListCategories(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "jane@example.com")

	names := []string{"Breakfast", "Desserts", "Mains", "Salads", "Soups"}
	for _, n := range names {
		_, err := s.CreateCategory(ctx, user.ID, n)
		require.NoError(t, err)
	}

	t.Run("first page", func(t *testing.T) {
		got, total, err := s.ListCategories(ctx, user.ID, storage.Page{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, got, 2)
		assert.Equal(t, "Breakfast", got[0].CategoryName)
		assert.Equal(t, "Desserts", got[1].CategoryName)
	})

	t.Run("last partial page", func(t *testing.T) {
		got, total, err := s.ListCategories(ctx, user.ID, storage.Page{Page: 3, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, got, 1)
		assert.Equal(t, "Soups", got[0].CategoryName)
	})

	t.Run("page past the end", func(t *testing.T) {
		got, total, err := s.ListCategories(ctx, user.ID, storage.Page{Page: 9, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, got)
	})

	t.Run("other owner sees nothing", func(t *testing.T) {
		other := createTestUser(t, s, "john@example.com")
		got, total, err := s.ListCategories(ctx, other.ID, storage.DefaultPage())
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, got)
	})
}

func TestStore_SearchCategories(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "jane@example.com")

	for _, n := range []string{"Summer Desserts", "Winter Desserts", "Soups"} {
		_, err := s.CreateCategory(ctx, user.ID, n)
		require.NoError(t, err)
	}

	t.Run("substring case-insensitive", func(t *testing.T) {
		got, total, err := s.SearchCategories(ctx, user.ID, "dessert", storage.DefaultPage())
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, got, 2)
	})

	t.Run("no matches", func(t *testing.T) {
		got, total, err := s.SearchCategories(ctx, user.ID, "pizza", storage.DefaultPage())
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, got)
	})

	t.Run("like metacharacters are literal", func(t *testing.T) {
		_, total, err := s.SearchCategories(ctx, user.ID, "%", storage.DefaultPage())
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestStore_RecipeCRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "jane@example.com")
	category, err := s.CreateCategory(ctx, user.ID, "Breakfast")
	require.NoError(t, err)

	recipe, err := s.CreateRecipe(ctx, category.ID, "Pancakes", "flour, eggs, milk", "mix and fry")
	require.NoError(t, err)
	assert.NotZero(t, recipe.ID)
	assert.Equal(t, category.ID, recipe.CategoryID)

	t.Run("duplicate name same category", func(t *testing.T) {
		_, err := s.CreateRecipe(ctx, category.ID, "Pancakes", "x", "y")
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})

	t.Run("same name other category is fine", func(t *testing.T) {
		other, err := s.CreateCategory(ctx, user.ID, "Brunch")
		require.NoError(t, err)
		_, err = s.CreateRecipe(ctx, other.ID, "Pancakes", "x", "y")
		assert.NoError(t, err)
	})

	t.Run("get", func(t *testing.T) {
		got, err := s.GetRecipe(ctx, category.ID, recipe.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pancakes", got.RecipeName)
		assert.Equal(t, "flour, eggs, milk", got.Ingredients)
	})

	t.Run("get scoped to category", func(t *testing.T) {
		_, err := s.GetRecipe(ctx, category.ID+100, recipe.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		updated, err := s.UpdateRecipe(ctx, category.ID, recipe.ID, "Crepes", "flour, eggs", "mix thin, fry")
		require.NoError(t, err)
		assert.Equal(t, "Crepes", updated.RecipeName)
		assert.Equal(t, "flour, eggs", updated.Ingredients)
		assert.Equal(t, "mix thin, fry", updated.Methods)
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := s.UpdateRecipe(ctx, category.ID, 9999, "X", "y", "z")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteRecipe(ctx, category.ID, recipe.ID))
		assert.ErrorIs(t, s.DeleteRecipe(ctx, category.ID, recipe.ID), storage.ErrNotFound)
	})
}

func TestStore_SearchRecipes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "jane@example.com")
	category, err := s.CreateCategory(ctx, user.ID, "Breakfast")
	require.NoError(t, err)

	for _, n := range []string{"Banana Pancakes", "Plain Pancakes", "Omelette"} {
		_, err := s.CreateRecipe(ctx, category.ID, n, "stuff", "steps")
		require.NoError(t, err)
	}

	got, total, err := s.SearchRecipes(ctx, category.ID, "PANCAKE", storage.DefaultPage())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, got, 2)
}

func TestStore_DeleteCategoryCascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "jane@example.com")
	category, err := s.CreateCategory(ctx, user.ID, "Breakfast")
	require.NoError(t, err)
	recipe, err := s.CreateRecipe(ctx, category.ID, "Pancakes", "x", "y")
	require.NoError(t, err)

	require.NoError(t, s.DeleteCategory(ctx, user.ID, category.ID))

	_, err = s.GetRecipe(ctx, category.ID, recipe.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Blacklist(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	blacklisted, err := s.IsBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, s.Invalidate(ctx, "token-a"))

	blacklisted, err = s.IsBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	t.Run("idempotent", func(t *testing.T) {
		assert.NoError(t, s.Invalidate(ctx, "token-a"))
	})
}

func TestStore_PurgeExpired(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base.Add(-5 * time.Hour) }
	require.NoError(t, s.Invalidate(ctx, "old-token"))

	s.now = func() time.Time { return base }
	require.NoError(t, s.Invalidate(ctx, "fresh-token"))

	purged, err := s.PurgeExpired(ctx, base.Add(-4*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	blacklisted, err := s.IsBlacklisted(ctx, "fresh-token")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	blacklisted, err = s.IsBlacklisted(ctx, "old-token")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}
