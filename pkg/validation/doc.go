// Package validation holds the pure input validators and text normalizers
// applied to user-supplied fields before anything touches the store.
// Validators perform no I/O and return a *ValidationError instead of
// panicking, so handlers can translate failures into 400 responses.
package validation
