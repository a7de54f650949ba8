package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/mdquiz/internal/platform/logger"
	"github.com/phrazzld/mdquiz/internal/store"
)

// ReviewLogStore implements the store.ReviewLogStore interface using a
// PostgreSQL database as the storage backend.
type ReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewLogStore creates a new PostgreSQL implementation of the
// store.ReviewLogStore interface. If logger is nil, a default logger will
// be used.
func NewReviewLogStore(db store.DBTX, logger *slog.Logger) *ReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure ReviewLogStore implements store.ReviewLogStore interface
var _ store.ReviewLogStore = (*ReviewLogStore)(nil)

// Append implements store.ReviewLogStore.Append.
func (s *ReviewLogStore) Append(ctx context.Context, entry *store.ReviewLogEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if entry == nil {
		return fmt.Errorf("%w: nil review log entry", store.ErrInvalidEntity)
	}
	if !entry.Outcome.IsValid() {
		return fmt.Errorf("%w: outcome %d", store.ErrInvalidEntity, int(entry.Outcome))
	}

	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	query := `
		INSERT INTO review_log (id, path, variant, outcome, reviewed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		id,
		entry.Path,
		entry.Variant,
		int(entry.Outcome),
		entry.ReviewedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to append review log entry",
			"path", entry.Path,
			"variant", entry.Variant,
			"error", err)
		return fmt.Errorf("failed to append review log entry: %w", MapError(err))
	}

	return nil
}

// WithTx implements store.ReviewLogStore.WithTx.
func (s *ReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &ReviewLogStore{
		db:     tx,
		logger: s.logger,
	}
}
