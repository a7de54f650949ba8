package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/mdquiz/internal/cards"
	"github.com/phrazzld/mdquiz/internal/domain"
	"github.com/phrazzld/mdquiz/internal/domain/srs"
	"github.com/phrazzld/mdquiz/internal/schedule"
	"github.com/phrazzld/mdquiz/internal/store"
)

// DrainPolicy selects what happens when the queue's minimum card is not due
// today.
type DrainPolicy string

const (
	// DrainPolicyStop ends the session at the first not-due card. Because
	// the queue is a minimum-priority structure, every remaining card is at
	// least as far from due.
	DrainPolicyStop DrainPolicy = "stop"

	// DrainPolicySkip discards not-due cards and keeps draining until the
	// queue is empty.
	DrainPolicySkip DrainPolicy = "skip"
)

// ParseDrainPolicy converts a configuration string into a DrainPolicy.
func ParseDrainPolicy(s string) (DrainPolicy, error) {
	switch DrainPolicy(s) {
	case DrainPolicyStop, DrainPolicySkip:
		return DrainPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown drain policy %q (expected stop or skip)", s)
	}
}

// Options configures a Session.
type Options struct {
	DrainPolicy  DrainPolicy
	PruneMissing bool

	// Now supplies the clock; defaults to time.Now. Tests inject a frozen
	// clock here.
	Now func() time.Time
}

// Session drives one scheduling run: reconcile history against the deck,
// build the queue, and repeatedly present the most due card, persisting each
// outcome durably before the next card is served.
type Session struct {
	tx        store.Transactor
	history   store.HistoryStore
	reviewLog store.ReviewLogStore
	scheduler srs.Service
	presenter Presenter
	loader    *cards.Loader
	logger    *slog.Logger
	opts      Options
}

// NewSession wires a Session from its collaborators.
// If logger is nil, a default logger will be used.
func NewSession(
	tx store.Transactor,
	history store.HistoryStore,
	reviewLog store.ReviewLogStore,
	scheduler srs.Service,
	presenter Presenter,
	loader *cards.Loader,
	logger *slog.Logger,
	opts Options,
) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DrainPolicy == "" {
		opts.DrainPolicy = DrainPolicyStop
	}

	return &Session{
		tx:        tx,
		history:   history,
		reviewLog: reviewLog,
		scheduler: scheduler,
		presenter: presenter,
		loader:    loader,
		logger:    logger.With(slog.String("component", "review_session")),
		opts:      opts,
	}
}

// Run executes one complete review session over the deck in fsys.
func (s *Session) Run(ctx context.Context, fsys fs.FS) error {
	// One frozen instant anchors every due-date comparison for the whole
	// run; due dates move only when a card's successor is produced.
	runStart := s.opts.Now()

	deck, err := s.loader.Load(fsys)
	if err != nil {
		return fmt.Errorf("failed to load deck: %w", err)
	}
	s.report(deck)

	if err := s.reconcile(ctx, deck); err != nil {
		return err
	}

	queue := schedule.NewQueue(schedule.NewOrdering(s.scheduler, runStart))
	if err := s.populate(ctx, deck, queue); err != nil {
		return err
	}

	s.logger.Info("starting review loop",
		"cards", queue.Len(),
		"drain_policy", string(s.opts.DrainPolicy))

	return s.drain(ctx, queue, runStart)
}

// report forwards the loader's findings to the operator.
func (s *Session) report(deck *cards.Deck) {
	for _, problem := range deck.Problems {
		s.presenter.Notify(problem.String())
	}
	for _, dangling := range deck.Dangling {
		s.presenter.Notify(dangling.String())
	}
	if deck.Cycle != nil {
		s.presenter.Notify(fmt.Sprintf(
			"dependency cycle detected: %s (review order degrades for these cards)",
			strings.Join(deck.Cycle, " -> ")))
	}
}

// reconcile reports every persisted path with no card file left on disk,
// deleting the rows when pruning is enabled.
func (s *Session) reconcile(ctx context.Context, deck *cards.Deck) error {
	persisted, err := s.history.ListPaths(ctx)
	if err != nil {
		return fmt.Errorf("failed to list persisted paths: %w", err)
	}

	known := make(map[string]struct{}, len(deck.Sources)+len(deck.Problems))
	for _, source := range deck.Sources {
		known[source.Path] = struct{}{}
	}
	// Malformed files still exist on disk; their history is kept.
	for _, problem := range deck.Problems {
		known[problem.Path] = struct{}{}
	}

	for _, path := range persisted {
		if _, ok := known[path]; ok {
			continue
		}
		if s.opts.PruneMissing {
			deleted, err := s.history.DeleteByPath(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to prune history for %s: %w", path, err)
			}
			s.presenter.Notify(fmt.Sprintf(
				"pruned %d history entries for missing card file: %s", deleted, path))
		} else {
			s.presenter.Notify(fmt.Sprintf(
				"history exists but card file is missing: %s", path))
		}
	}

	return nil
}

// populate merges persisted history into the deck's sources and fills the
// queue. Fresh cards (no history yet) get their initial rows written so the
// deck's state is durable from first sight.
func (s *Session) populate(ctx context.Context, deck *cards.Deck, queue *schedule.Queue) error {
	for _, source := range deck.Sources {
		entries, err := s.history.GetByPath(ctx, source.Path)
		if err != nil {
			return fmt.Errorf("failed to load history for %s: %w", source.Path, err)
		}

		if conflict := persistedKindConflict(source, entries); conflict != "" {
			s.presenter.Notify(conflict)
			continue
		}

		closure := deck.Closure(source.Path)
		built, err := s.buildCards(ctx, source, entries, closure)
		if err != nil {
			return err
		}
		for _, card := range built {
			queue.Push(card)
		}
	}

	return nil
}

// persistedKindConflict returns a report when the history rows for a card
// disagree about its type, either among themselves or with the parsed file.
// Such cards are excluded from the run.
func persistedKindConflict(source *cards.Source, entries []*store.HistoryEntry) string {
	kinds := make(map[domain.CardKind]struct{})
	for _, entry := range entries {
		kinds[entry.Kind] = struct{}{}
	}

	if len(kinds) > 1 {
		return fmt.Sprintf("%s: history claims multiple card types; this is not allowed", source.Path)
	}
	for kind := range kinds {
		if kind != source.Kind {
			return fmt.Sprintf("%s: history claims type %s but the file parses as %s",
				source.Path, kind, source.Kind)
		}
	}
	return ""
}

// buildCards constructs the reviewable card values for one source, merging
// in persisted review state by variant. Variants without a history row yet
// are written immediately.
func (s *Session) buildCards(
	ctx context.Context,
	source *cards.Source,
	entries []*store.HistoryEntry,
	closure map[string]struct{},
) ([]*domain.Card, error) {
	byVariant := make(map[int]*store.HistoryEntry, len(entries))
	for _, entry := range entries {
		byVariant[entry.Variant] = entry
	}

	variants := []int{0}
	if source.Kind == domain.CardKindCloze {
		variants = source.Groups
	}

	var built []*domain.Card
	for _, variant := range variants {
		var review *domain.ReviewState
		entry, seen := byVariant[variant]
		if seen {
			review = entry.Review
		}

		var card *domain.Card
		var err error
		switch source.Kind {
		case domain.CardKindNormal:
			card, err = domain.NewNormalCard(
				source.Path, source.Tags, closure, review, source.Front, source.Back)
		case domain.CardKindCloze:
			card, err = domain.NewClozeVariant(
				source.Path, source.Tags, closure, review, source.ClozeText, variant)
		}
		if err != nil {
			s.presenter.Notify(fmt.Sprintf("%s: %v", source.Path, err))
			continue
		}

		if !seen {
			if err := s.history.Upsert(ctx, &store.HistoryEntry{
				Path:    source.Path,
				Variant: variant,
				Kind:    source.Kind,
			}); err != nil {
				return nil, fmt.Errorf("failed to record new card %s: %w", source.Path, err)
			}
		}

		built = append(built, card)
	}

	// A history row for a variant that no longer exists in the file means
	// the author renumbered or removed a group; keep the row, skip the card.
	for _, entry := range entries {
		if !containsVariant(variants, entry.Variant) {
			s.logger.Debug("history variant no longer present in source",
				"path", source.Path,
				"variant", entry.Variant)
		}
	}

	return built, nil
}

// drain runs the interactive loop until the queue empties or the drain
// policy ends the session.
func (s *Session) drain(ctx context.Context, queue *schedule.Queue, runStart time.Time) error {
	for {
		card, ok := queue.PopMin()
		if !ok {
			s.logger.Info("queue drained; session complete")
			return nil
		}

		if !s.scheduler.IsDueToday(card, runStart) {
			if s.opts.DrainPolicy == DrainPolicyStop {
				s.logger.Info("next card not due today; session complete",
					"path", card.Path,
					"variant", card.Variant)
				return nil
			}
			continue
		}

		successor, err := s.presentAndApply(ctx, card, runStart)
		if err != nil {
			return err
		}
		queue.Push(successor)
	}
}

// presentAndApply shows one card, collects the outcome, and persists the
// successor state durably before returning it.
func (s *Session) presentAndApply(
	ctx context.Context,
	card *domain.Card,
	runStart time.Time,
) (*domain.Card, error) {
	if err := s.presenter.ShowQuestion(ctx, card, renderQuestion(card)); err != nil {
		return nil, fmt.Errorf("failed to show question: %w", err)
	}
	if err := s.presenter.WaitForReveal(ctx); err != nil {
		return nil, fmt.Errorf("failed waiting for reveal: %w", err)
	}
	if err := s.presenter.ShowAnswer(ctx, card, renderAnswer(card)); err != nil {
		return nil, fmt.Errorf("failed to show answer: %w", err)
	}

	outcome, err := s.presenter.PromptOutcome(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read outcome: %w", err)
	}

	now := s.opts.Now()
	successor, err := s.scheduler.ApplyReview(card, outcome, now, runStart)
	if err != nil {
		return nil, fmt.Errorf("failed to apply review outcome: %w", err)
	}

	// The upsert and the log append commit together; an interruption after
	// the commit cannot lose the review.
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.history.WithTx(tx).Upsert(ctx, &store.HistoryEntry{
			Path:    successor.Path,
			Variant: successor.Variant,
			Kind:    successor.Kind,
			Review:  successor.Review,
		}); err != nil {
			return err
		}
		return s.reviewLog.WithTx(tx).Append(ctx, &store.ReviewLogEntry{
			ID:         uuid.New(),
			Path:       successor.Path,
			Variant:    successor.Variant,
			Outcome:    outcome,
			ReviewedAt: now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist review: %w", err)
	}

	s.logger.Info("review recorded",
		"path", successor.Path,
		"variant", successor.Variant,
		"outcome", int(outcome))

	return successor, nil
}

func containsVariant(variants []int, v int) bool {
	idx := sort.SearchInts(variants, v)
	return idx < len(variants) && variants[idx] == v
}

// ErrSessionAborted reports a session ended by the learner rather than by
// the queue draining.
var ErrSessionAborted = errors.New("session aborted")
