// Package store provides abstractions for review-history persistence.
// Interfaces here are implemented by the postgres platform package; the
// review session depends only on these interfaces.
package store
