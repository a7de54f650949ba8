// Package config defines the application configuration structure and
// loading. Values come from an optional config.yaml and from MDQUIZ_-prefixed
// environment variables, with the environment taking precedence; the result
// is validated before use.
package config
