package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint would be violated
	ErrDuplicate = errors.New("record already exists")
)

// User is an identity record. Password and secret word are stored only as
// bcrypt hashes, never plaintext.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	SecretHash   string    `json:"-"`
	CreatedAt    time.Time `json:"date_created"`
	UpdatedAt    time.Time `json:"date_modified"`
}

// Category is a named recipe grouping owned by exactly one user.
// Names are title-case normalized before storage, so uniqueness per owner
// is enforced on the stored form.
type Category struct {
	ID           int64     `json:"id"`
	CategoryName string    `json:"category_name"`
	CreatedBy    int64     `json:"created_by"`
	CreatedAt    time.Time `json:"date_created"`
	UpdatedAt    time.Time `json:"date_modified"`
}

// Recipe belongs to exactly one category. Ingredients and methods are free text.
type Recipe struct {
	ID          int64     `json:"id"`
	RecipeName  string    `json:"recipe_name"`
	Ingredients string    `json:"recipe_ingredients"`
	Methods     string    `json:"recipe_methods"`
	CategoryID  int64     `json:"category_id"`
	CreatedAt   time.Time `json:"date_created"`
	UpdatedAt   time.Time `json:"date_modified"`
}

// Page describes a pagination window. Page numbers start at 1.
type Page struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the window.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// DefaultPage is the window used when the client sends no pagination params.
func DefaultPage() Page {
	return Page{Page: 1, Limit: 20}
}

// UserStore persists identity records.
type UserStore interface {
	// CreateUser persists a new user. Returns ErrDuplicate if the email is taken.
	CreateUser(ctx context.Context, email, username, passwordHash, secretHash string) (*User, error)
	// GetUserByEmail looks up a user by normalized email. Returns ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// GetUserByID looks up a user by id. Returns ErrNotFound.
	GetUserByID(ctx context.Context, id int64) (*User, error)
	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// CategoryStore persists recipe categories. All operations are scoped to the
// owning user; a category belonging to another user behaves as absent.
type CategoryStore interface {
	CreateCategory(ctx context.Context, ownerID int64, name string) (*Category, error)
	GetCategory(ctx context.Context, ownerID, id int64) (*Category, error)
	ListCategories(ctx context.Context, ownerID int64, page Page) ([]*Category, int, error)
	SearchCategories(ctx context.Context, ownerID int64, query string, page Page) ([]*Category, int, error)
	UpdateCategory(ctx context.Context, ownerID, id int64, name string) (*Category, error)
	// DeleteCategory removes the category and, by cascade, its recipes.
	DeleteCategory(ctx context.Context, ownerID, id int64) error
}

// RecipeStore persists recipes, scoped to their owning category.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, categoryID int64, name, ingredients, methods string) (*Recipe, error)
	GetRecipe(ctx context.Context, categoryID, id int64) (*Recipe, error)
	ListRecipes(ctx context.Context, categoryID int64, page Page) ([]*Recipe, int, error)
	SearchRecipes(ctx context.Context, categoryID int64, query string, page Page) ([]*Recipe, int, error)
	UpdateRecipe(ctx context.Context, categoryID, id int64, name, ingredients, methods string) (*Recipe, error)
	DeleteRecipe(ctx context.Context, categoryID, id int64) error
}

// BlacklistStore records tokens invalidated before their natural expiry.
type BlacklistStore interface {
	// Invalidate records the token. Inserting the same token twice is a no-op.
	Invalidate(ctx context.Context, token string) error
	// IsBlacklisted reports whether the token has been invalidated.
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	// PurgeExpired deletes blacklist entries created before the cutoff.
	// Entries that old refer to tokens past their embedded expiry anyway.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// Store is the full persistence surface the API server depends on.
type Store interface {
	UserStore
	CategoryStore
	RecipeStore
	BlacklistStore

	Ping(ctx context.Context) error
	Close() error
}
