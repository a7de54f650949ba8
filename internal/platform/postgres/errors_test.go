package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/mdquiz/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   error
		want error
	}{
		{
			name: "nil stays nil",
			in:   nil,
			want: nil,
		},
		{
			name: "no rows maps to not found",
			in:   sql.ErrNoRows,
			want: store.ErrNotFound,
		},
		{
			name: "wrapped no rows maps to not found",
			in:   fmt.Errorf("query failed: %w", sql.ErrNoRows),
			want: store.ErrNotFound,
		},
		{
			name: "unique violation maps to duplicate",
			in:   &pgconn.PgError{Code: uniqueViolationCode},
			want: store.ErrDuplicate,
		},
		{
			name: "check violation maps to invalid entity",
			in:   &pgconn.PgError{Code: checkViolationCode, ConstraintName: "review_history_outcome_check"},
			want: store.ErrInvalidEntity,
		},
		{
			name: "not null violation maps to invalid entity",
			in:   &pgconn.PgError{Code: notNullViolationCode, ColumnName: "path"},
			want: store.ErrInvalidEntity,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := MapError(tc.in)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestMapErrorPassesThroughUnknownErrors(t *testing.T) {
	t.Parallel()

	unknown := errors.New("connection refused")
	got := MapError(unknown)
	assert.Equal(t, unknown, got)

	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(other), MapError(other))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.True(t, IsUniqueViolation(
		fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: uniqueViolationCode})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("something else")))
	assert.False(t, IsUniqueViolation(nil))
}
