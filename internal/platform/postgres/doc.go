// Package postgres implements the store interfaces on PostgreSQL, accessed
// through database/sql with the pgx driver. It also carries the embedded
// goose migrations for the review-history schema.
package postgres
