package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/mdquiz/internal/domain"
)

// HistoryEntry is the persisted review state for one (path, variant) pair.
// Variant is 0 for normal cards and the occlusion group number for cloze
// variants. Review is nil for a card that has been seen but never reviewed.
type HistoryEntry struct {
	Path    string
	Variant int
	Kind    domain.CardKind
	Review  *domain.ReviewState
}

// HistoryStore defines the interface for review-history persistence.
//
// The store is keyed by (path, variant). After every review the session
// upserts the reviewed card's entry; that write must be durable before the
// next card is served, so upserts run inside a transaction together with the
// review-log append.
type HistoryStore interface {
	// GetByPath retrieves every history entry for a card path. A cloze card
	// has one entry per variant; a normal card has exactly one, at variant 0.
	// Returns an empty slice (not an error) when the path is unknown.
	GetByPath(ctx context.Context, path string) ([]*HistoryEntry, error)

	// Upsert creates or replaces the entry for the (path, variant) key.
	Upsert(ctx context.Context, entry *HistoryEntry) error

	// ListPaths returns every distinct card path present in the store, for
	// reconciliation against the card files on disk.
	ListPaths(ctx context.Context) ([]string, error)

	// DeleteByPath removes every entry for a path and returns how many rows
	// were deleted. Used when pruning history for removed card files.
	DeleteByPath(ctx context.Context, path string) (int64, error)

	// WithTx returns a HistoryStore bound to the given transaction, so
	// multiple operations can commit atomically via RunInTransaction.
	WithTx(tx *sql.Tx) HistoryStore
}

// ReviewLogEntry is one append-only audit record of a completed review.
type ReviewLogEntry struct {
	ID         uuid.UUID
	Path       string
	Variant    int
	Outcome    domain.ReviewOutcome
	ReviewedAt time.Time
}

// ReviewLogStore defines the interface for the append-only review log.
type ReviewLogStore interface {
	// Append records one completed review.
	Append(ctx context.Context, entry *ReviewLogEntry) error

	// WithTx returns a ReviewLogStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}
