// Package postgres implements storage.Store on database/sql with raw SQL.
// The SQL sticks to the portable subset (app-assigned UTC timestamps,
// ordinal placeholders, RETURNING) so the test suite can run the same
// statements against an in-memory SQLite database.
package postgres
