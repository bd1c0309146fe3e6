package api

import "github.com/recipevault/recipevault/pkg/storage"

// registerRequest is the body for POST /auth/register.
type registerRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	SecretWord string `json:"secret_word"`
}

// loginRequest is the body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse carries the issued bearer token.
type loginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

// resetPasswordRequest is the body for PUT /auth/password-reset.
type resetPasswordRequest struct {
	Email         string `json:"email"`
	ResetPassword string `json:"reset_password"`
	SecretWord    string `json:"secret_word"`
}

// resetPasswordResponse confirms which account was reset.
type resetPasswordResponse struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// categoryRequest is the body for creating or renaming a category.
type categoryRequest struct {
	CategoryName string `json:"category_name"`
}

// categoryListResponse is one page of categories.
type categoryListResponse struct {
	Categories []*storage.Category `json:"categories"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	Total      int                 `json:"total"`
}

// recipeRequest is the body for creating or updating a recipe.
type recipeRequest struct {
	RecipeName  string `json:"recipe_name"`
	Ingredients string `json:"recipe_ingredients"`
	Methods     string `json:"recipe_methods"`
}

// recipeListResponse is one page of recipes.
type recipeListResponse struct {
	Recipes []*storage.Recipe `json:"recipes"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	Total   int               `json:"total"`
}
