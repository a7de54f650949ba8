package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/mdquiz/internal/domain"
	"github.com/phrazzld/mdquiz/internal/platform/logger"
	"github.com/phrazzld/mdquiz/internal/store"
)

// HistoryStore implements the store.HistoryStore interface using a
// PostgreSQL database as the storage backend.
type HistoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewHistoryStore creates a new PostgreSQL implementation of the
// store.HistoryStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewHistoryStore(db store.DBTX, logger *slog.Logger) *HistoryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &HistoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "history_store")),
	}
}

// Ensure HistoryStore implements store.HistoryStore interface
var _ store.HistoryStore = (*HistoryStore)(nil)

// GetByPath implements store.HistoryStore.GetByPath.
// It retrieves every history entry for a card path, one row per cloze
// variant (variant 0 for normal cards).
func (s *HistoryStore) GetByPath(ctx context.Context, path string) ([]*store.HistoryEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT card_type, variant, last_reviewed_at, outcome, previous_interval_seconds
		FROM review_history
		WHERE path = $1
		ORDER BY variant ASC
	`

	rows, err := s.db.QueryContext(ctx, query, path)
	if err != nil {
		log.Error("failed to query history entries",
			"path", path,
			"error", err)
		return nil, fmt.Errorf("failed to query history entries: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var entries []*store.HistoryEntry

	for rows.Next() {
		var (
			cardType        string
			variant         int
			lastReviewedAt  sql.NullTime
			outcome         sql.NullInt64
			intervalSeconds sql.NullInt64
		)

		if err := rows.Scan(&cardType, &variant, &lastReviewedAt, &outcome, &intervalSeconds); err != nil {
			log.Error("failed to scan history row",
				"path", path,
				"error", err)
			return nil, fmt.Errorf("failed to scan history row: %w", MapError(err))
		}

		entry := &store.HistoryEntry{
			Path:    path,
			Variant: variant,
			Kind:    domain.CardKind(cardType),
		}

		// The three review fields are written together; any one present
		// implies all are.
		if lastReviewedAt.Valid {
			entry.Review = &domain.ReviewState{
				LastReviewedAt:   lastReviewedAt.Time,
				Outcome:          domain.ReviewOutcome(outcome.Int64),
				PreviousInterval: time.Duration(intervalSeconds.Int64) * time.Second,
			}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating history rows",
			"path", path,
			"error", err)
		return nil, fmt.Errorf("error iterating history rows: %w", MapError(err))
	}

	return entries, nil
}

// Upsert implements store.HistoryStore.Upsert.
// It creates or replaces the entry keyed by (path, variant).
func (s *HistoryStore) Upsert(ctx context.Context, entry *store.HistoryEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if entry == nil {
		return fmt.Errorf("%w: nil history entry", store.ErrInvalidEntity)
	}
	if err := entry.Review.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_history (path, variant, card_type, last_reviewed_at, outcome, previous_interval_seconds, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (path, variant) DO UPDATE
		SET card_type = EXCLUDED.card_type,
		    last_reviewed_at = EXCLUDED.last_reviewed_at,
		    outcome = EXCLUDED.outcome,
		    previous_interval_seconds = EXCLUDED.previous_interval_seconds,
		    updated_at = EXCLUDED.updated_at
	`

	var (
		lastReviewedAt  sql.NullTime
		outcome         sql.NullInt64
		intervalSeconds sql.NullInt64
	)
	if entry.Review != nil {
		lastReviewedAt = sql.NullTime{Time: entry.Review.LastReviewedAt.UTC(), Valid: true}
		outcome = sql.NullInt64{Int64: int64(entry.Review.Outcome), Valid: true}
		intervalSeconds = sql.NullInt64{
			Int64: int64(entry.Review.PreviousInterval / time.Second),
			Valid: true,
		}
	}

	_, err := s.db.ExecContext(ctx, query,
		entry.Path,
		entry.Variant,
		string(entry.Kind),
		lastReviewedAt,
		outcome,
		intervalSeconds,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to upsert history entry",
			"path", entry.Path,
			"variant", entry.Variant,
			"error", err)
		return fmt.Errorf("failed to upsert history entry: %w", MapError(err))
	}

	return nil
}

// ListPaths implements store.HistoryStore.ListPaths.
func (s *HistoryStore) ListPaths(ctx context.Context) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT DISTINCT path FROM review_history ORDER BY path ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list history paths", "error", err)
		return nil, fmt.Errorf("failed to list history paths: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			log.Error("failed to scan history path", "error", err)
			return nil, fmt.Errorf("failed to scan history path: %w", MapError(err))
		}
		paths = append(paths, path)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating history paths", "error", err)
		return nil, fmt.Errorf("error iterating history paths: %w", MapError(err))
	}

	return paths, nil
}

// DeleteByPath implements store.HistoryStore.DeleteByPath.
func (s *HistoryStore) DeleteByPath(ctx context.Context, path string) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM review_history WHERE path = $1`

	result, err := s.db.ExecContext(ctx, query, path)
	if err != nil {
		log.Error("failed to delete history entries",
			"path", path,
			"error", err)
		return 0, fmt.Errorf("failed to delete history entries: %w", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			"path", path,
			"error", err)
		return 0, fmt.Errorf("failed to get rows affected: %w", MapError(err))
	}

	return rowsAffected, nil
}

// WithTx implements store.HistoryStore.WithTx.
// It returns a HistoryStore bound to the given transaction.
func (s *HistoryStore) WithTx(tx *sql.Tx) store.HistoryStore {
	return &HistoryStore{
		db:     tx,
		logger: s.logger,
	}
}
