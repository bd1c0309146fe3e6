package api

import (
	"errors"
	"net/http"

	"github.com/recipevault/recipevault/pkg/contextkeys"
	"github.com/recipevault/recipevault/pkg/httputil"
	"github.com/recipevault/recipevault/pkg/storage"
	"github.com/recipevault/recipevault/pkg/validation"
)

// handleCreateCategory creates a category owned by the caller.
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())

	var req categoryRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	name, verr := validation.ValidateCategoryName(req.CategoryName)
	if verr != nil {
		httputil.WriteBadRequest(w, verr.Message)
		return
	}

	category, err := s.store.CreateCategory(r.Context(), user.ID, name)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			httputil.WriteConflict(w, "Category name exists")
			return
		}
		s.logError(r, err, "failed to create category")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteCreated(w, category)
}

// handleListCategories returns one page of the caller's categories. A q
// query parameter switches to substring search.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())

	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	var (
		categories []*storage.Category
		total      int
		err        error
	)
	if q := httputil.ParseQueryString(r, "q", ""); q != "" {
		categories, total, err = s.store.SearchCategories(r.Context(), user.ID, q, page)
	} else {
		categories, total, err = s.store.ListCategories(r.Context(), user.ID, page)
	}
	if err != nil {
		s.logError(r, err, "failed to list categories")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, categoryListResponse{
		Categories: categories,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
	})
}

// handleSearchCategories searches the caller's categories by name substring.
// An empty q matches everything.
func (s *Server) handleSearchCategories(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())

	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	q := httputil.ParseQueryString(r, "q", "")
	categories, total, err := s.store.SearchCategories(r.Context(), user.ID, q, page)
	if err != nil {
		s.logError(r, err, "failed to search categories")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, categoryListResponse{
		Categories: categories,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
	})
}

// handleGetCategory returns one category by id.
func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	category, err := s.store.GetCategory(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, "No category found")
			return
		}
		s.logError(r, err, "failed to get category")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, category)
}

// handleUpdateCategory renames a category.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req categoryRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	name, verr := validation.ValidateCategoryName(req.CategoryName)
	if verr != nil {
		httputil.WriteBadRequest(w, verr.Message)
		return
	}

	category, err := s.store.UpdateCategory(r.Context(), user.ID, id, name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			httputil.WriteNotFound(w, "No category found")
		case errors.Is(err, storage.ErrDuplicate):
			httputil.WriteConflict(w, "Category name exists")
		default:
			s.logError(r, err, "failed to update category")
			httputil.WriteInternalError(w)
		}
		return
	}

	httputil.WriteSuccess(w, category)
}

// handleDeleteCategory removes a category and, by cascade, its recipes.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := contextkeys.UserFrom(r.Context())

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteCategory(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, "No category found")
			return
		}
		s.logError(r, err, "failed to delete category")
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Category deleted")
}
