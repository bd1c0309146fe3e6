// Package observability bundles the service's logging, metrics, and health
// reporting: a structured logrus logger, Prometheus collectors for the HTTP
// and auth paths, and a dependency-checking health endpoint.
package observability
