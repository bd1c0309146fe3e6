// Package config loads service configuration from environment variables,
// with an optional YAML file providing defaults that the environment can
// override. The signing secret and database URL are required inputs and are
// never hard-coded.
package config
