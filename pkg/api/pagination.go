package api

import (
	"net/http"

	"github.com/recipevault/recipevault/pkg/httputil"
	"github.com/recipevault/recipevault/pkg/storage"
)

// maxPageLimit caps how many rows one page may request.
const maxPageLimit = 100

// parsePage reads the page and limit query parameters. Missing parameters
// fall back to the defaults; non-numeric or non-positive values are
// rejected with a 400 already written to w.
func parsePage(w http.ResponseWriter, r *http.Request) (storage.Page, bool) {
	page := storage.DefaultPage()

	p, err := httputil.ParseQueryInt(r, "page", page.Page)
	if err != nil || p < 1 {
		httputil.WriteBadRequest(w, "Page number not valid")
		return storage.Page{}, false
	}
	limit, err := httputil.ParseQueryInt(r, "limit", page.Limit)
	if err != nil || limit < 1 {
		httputil.WriteBadRequest(w, "Limit is not a valid number")
		return storage.Page{}, false
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return storage.Page{Page: p, Limit: limit}, true
}
