// Package api implements the HTTP surface of the recipe service: account
// registration and login, bearer-token logout, and owner-scoped CRUD plus
// search over recipe categories and their recipes.
package api
