package api

import (
	"errors"
	"net/http"

	"github.com/recipevault/recipevault/pkg/contextkeys"
	"github.com/recipevault/recipevault/pkg/httputil"
	"github.com/recipevault/recipevault/pkg/storage"
	"github.com/recipevault/recipevault/pkg/validation"
)

// resolveCategory loads the category from the path, scoped to the caller.
// Writes the error response itself when the category does not exist.
func (s *Server) resolveCategory(w http.ResponseWriter, r *http.Request) (*storage.Category, bool) {
	user := contextkeys.UserFrom(r.Context())

	categoryID, ok := httputil.ParsePathInt64OrError(w, r, "category_id")
	if !ok {
		return nil, false
	}

	category, err := s.store.GetCategory(r.Context(), user.ID, categoryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, "Category does not exist")
			return nil, false
		}
		s.logError(r, err, "failed to get category")
		httputil.WriteInternalError(w)
		return nil, false
	}
	return category, true
}

// handleCreateRecipe adds a recipe to a category the caller owns.
func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	category, ok := s.resolveCategory(w, r)
	if !ok {
		return
	}

	var req recipeRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	in, verr := validation.ValidateRecipe(req.RecipeName, req.Ingredients, req.Methods)
	if verr != nil {
		httputil.WriteBadRequest(w, verr.Message)
		return
	}

	recipe, err := s.store.CreateRecipe(r.Context(), category.ID, in.Name, in.Ingredients, in.Methods)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			httputil.WriteConflict(w, "Recipe name exists")
			return
		}
		s.logError(r, err, "failed to create recipe")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteCreated(w, recipe)
}

// handleListRecipes returns one page of a category's recipes. A q query
// parameter switches to substring search.
func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	category, ok := s.resolveCategory(w, r)
	if !ok {
		return
	}

	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	var (
		recipes []*storage.Recipe
		total   int
		err     error
	)
	if q := httputil.ParseQueryString(r, "q", ""); q != "" {
		recipes, total, err = s.store.SearchRecipes(r.Context(), category.ID, q, page)
	} else {
		recipes, total, err = s.store.ListRecipes(r.Context(), category.ID, page)
	}
	if err != nil {
		s.logError(r, err, "failed to list recipes")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, recipeListResponse{
		Recipes: recipes,
		Page:    page.Page,
		Limit:   page.Limit,
		Total:   total,
	})
}

// handleSearchRecipes searches a category's recipes by name substring. An
// empty q matches everything.
func (s *Server) handleSearchRecipes(w http.ResponseWriter, r *http.Request) {
	category, ok := s.resolveCategory(w, r)
	if !ok {
		return
	}

	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	q := httputil.ParseQueryString(r, "q", "")
	recipes, total, err := s.store.SearchRecipes(r.Context(), category.ID, q, page)
	if err != nil {
		s.logError(r, err, "failed to search recipes")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, recipeListResponse{
		Recipes: recipes,
		Page:    page.Page,
		Limit:   page.Limit,
		Total:   total,
	})
}

// handleGetRecipe returns one recipe by id within its category.
func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	category, ok := s.resolveCategory(w, r)
	if !ok {
		return
	}

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	recipe, err := s.store.GetRecipe(r.Context(), category.ID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, "No recipe found")
			return
		}
		s.logError(r, err, "failed to get recipe")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, recipe)
}

// handleUpdateRecipe rewrites a recipe's name, ingredients, and methods.
func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	category, ok := s.resolveCategory(w, r)
	if !ok {
		return
	}

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req recipeRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	in, verr := validation.ValidateRecipe(req.RecipeName, req.Ingredients, req.Methods)
	if verr != nil {
		httputil.WriteBadRequest(w, verr.Message)
		return
	}

	recipe, err := s.store.UpdateRecipe(r.Context(), category.ID, id, in.Name, in.Ingredients, in.Methods)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httputil.WriteNotFound(w, "No recipe found")
		case errors.Is(err, storage.ErrDuplicate):
			httputil.WriteConflict(w, "Recipe name exists")
		default:
			s.logError(r, err, "failed to update recipe")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteSuccess(w, recipe)
}

// handleDeleteRecipe removes one recipe from its category.
func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	category, ok := s.resolveCategory(w, r)
	if !ok {
		return
	}

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteRecipe(r.Context(), category.ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, "No recipe found")
			return
		}
		s.logError(r, err, "failed to delete recipe")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Recipe deleted")
}
