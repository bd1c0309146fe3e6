// Package httputil provides HTTP handler utilities for consistent JSON
// encoding/decoding, request parsing, and the shared middleware stack.
// Every error response carries a {"message": ...} body.
package httputil
