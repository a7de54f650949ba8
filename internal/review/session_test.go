package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/phrazzld/mdquiz/internal/cards"
	"github.com/phrazzld/mdquiz/internal/domain"
	"github.com/phrazzld/mdquiz/internal/domain/srs"
	"github.com/phrazzld/mdquiz/internal/store"
)

var sessionRunStart = time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC)

// fakeTransactor runs the function directly; the fake stores ignore the nil
// transaction handle.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	f.calls++
	return fn(ctx, nil)
}

type historyKey struct {
	path    string
	variant int
}

// fakeHistoryStore is an in-memory HistoryStore.
type fakeHistoryStore struct {
	entries map[historyKey]*store.HistoryEntry
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{entries: make(map[historyKey]*store.HistoryEntry)}
}

func (f *fakeHistoryStore) GetByPath(ctx context.Context, path string) ([]*store.HistoryEntry, error) {
	var result []*store.HistoryEntry
	for key, entry := range f.entries {
		if key.path == path {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Variant < result[j].Variant })
	return result, nil
}

func (f *fakeHistoryStore) Upsert(ctx context.Context, entry *store.HistoryEntry) error {
	copied := *entry
	f.entries[historyKey{path: entry.Path, variant: entry.Variant}] = &copied
	return nil
}

func (f *fakeHistoryStore) ListPaths(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for key := range f.entries {
		seen[key.path] = struct{}{}
	}
	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func (f *fakeHistoryStore) DeleteByPath(ctx context.Context, path string) (int64, error) {
	var deleted int64
	for key := range f.entries {
		if key.path == path {
			delete(f.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeHistoryStore) WithTx(tx *sql.Tx) store.HistoryStore { return f }

func (f *fakeHistoryStore) get(path string, variant int) *store.HistoryEntry {
	return f.entries[historyKey{path: path, variant: variant}]
}

// fakeReviewLog is an in-memory ReviewLogStore.
type fakeReviewLog struct {
	entries []*store.ReviewLogEntry
}

func (f *fakeReviewLog) Append(ctx context.Context, entry *store.ReviewLogEntry) error {
	copied := *entry
	f.entries = append(f.entries, &copied)
	return nil
}

func (f *fakeReviewLog) WithTx(tx *sql.Tx) store.ReviewLogStore { return f }

// scriptedPresenter replays a fixed sequence of outcomes and records what the
// session showed. Once the script runs out it aborts the session, so a test
// can never loop forever.
type scriptedPresenter struct {
	outcomes []domain.ReviewOutcome

	questions []string
	answers   []string
	notices   []string
}

func (p *scriptedPresenter) ShowQuestion(ctx context.Context, card *domain.Card, rendered string) error {
	p.questions = append(p.questions, fmt.Sprintf("%s#%d: %s", card.Path, card.Variant, rendered))
	return nil
}

func (p *scriptedPresenter) WaitForReveal(ctx context.Context) error { return nil }

func (p *scriptedPresenter) ShowAnswer(ctx context.Context, card *domain.Card, rendered string) error {
	p.answers = append(p.answers, rendered)
	return nil
}

func (p *scriptedPresenter) PromptOutcome(ctx context.Context) (domain.ReviewOutcome, error) {
	if len(p.outcomes) == 0 {
		return 0, ErrSessionAborted
	}
	outcome := p.outcomes[0]
	p.outcomes = p.outcomes[1:]
	return outcome, nil
}

func (p *scriptedPresenter) Notify(message string) {
	p.notices = append(p.notices, message)
}

type sessionFixture struct {
	session   *Session
	tx        *fakeTransactor
	history   *fakeHistoryStore
	reviewLog *fakeReviewLog
	presenter *scriptedPresenter
}

func newFixture(outcomes []domain.ReviewOutcome, opts Options) *sessionFixture {
	tx := &fakeTransactor{}
	history := newFakeHistoryStore()
	reviewLog := &fakeReviewLog{}
	presenter := &scriptedPresenter{outcomes: outcomes}

	if opts.Now == nil {
		opts.Now = func() time.Time { return sessionRunStart }
	}

	session := NewSession(
		tx,
		history,
		reviewLog,
		srs.NewDefaultService(),
		presenter,
		cards.NewLoader(nil, false),
		nil,
		opts,
	)

	return &sessionFixture{
		session:   session,
		tx:        tx,
		history:   history,
		reviewLog: reviewLog,
		presenter: presenter,
	}
}

func TestSessionReviewsFreshNormalCard(t *testing.T) {
	t.Parallel()
	fixture := newFixture([]domain.ReviewOutcome{domain.ReviewOutcomeVeryEasy}, Options{})

	fsys := fstest.MapFS{
		"go.md": &fstest.MapFile{
			Data: []byte("---\ntags: []\n---\nWhat is Go?\n---\nA language."),
		},
	}

	err := fixture.session.Run(context.Background(), fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fixture.presenter.questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(fixture.presenter.questions))
	}
	if !strings.Contains(fixture.presenter.questions[0], "What is Go?") {
		t.Errorf("unexpected question: %q", fixture.presenter.questions[0])
	}

	entry := fixture.history.get("go.md", 0)
	if entry == nil {
		t.Fatal("expected a history entry for go.md variant 0")
	}
	if entry.Review == nil {
		t.Fatal("expected the persisted entry to carry review state")
	}
	if entry.Review.Outcome != domain.ReviewOutcomeVeryEasy {
		t.Errorf("expected persisted outcome VeryEasy, got %v", entry.Review.Outcome)
	}

	if len(fixture.reviewLog.entries) != 1 {
		t.Fatalf("expected 1 review log entry, got %d", len(fixture.reviewLog.entries))
	}
	logged := fixture.reviewLog.entries[0]
	if logged.Path != "go.md" || logged.Outcome != domain.ReviewOutcomeVeryEasy {
		t.Errorf("unexpected review log entry: %+v", logged)
	}

	// The upsert and the log append committed together.
	if fixture.tx.calls != 1 {
		t.Errorf("expected 1 transaction, got %d", fixture.tx.calls)
	}
}

func TestSessionReviewsEveryClozeVariant(t *testing.T) {
	t.Parallel()
	fixture := newFixture([]domain.ReviewOutcome{
		domain.ReviewOutcomeVeryEasy,
		domain.ReviewOutcomeVeryEasy,
	}, Options{})

	fsys := fstest.MapFS{
		"capitals.md": &fstest.MapFile{
			Data: []byte("---\ntags: []\n---\nAnswer is £{c1: Paris} and £{c2: France}."),
		},
	}

	err := fixture.session.Run(context.Background(), fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fixture.presenter.questions) != 2 {
		t.Fatalf("expected 2 questions, got %d: %v",
			len(fixture.presenter.questions), fixture.presenter.questions)
	}

	for _, variant := range []int{1, 2} {
		entry := fixture.history.get("capitals.md", variant)
		if entry == nil {
			t.Fatalf("expected a history entry for variant %d", variant)
		}
		if entry.Kind != domain.CardKindCloze {
			t.Errorf("expected cloze kind for variant %d, got %v", variant, entry.Kind)
		}
		if entry.Review == nil {
			t.Errorf("expected review state for variant %d", variant)
		}
	}
}

func TestSessionRespectsDependencyOrder(t *testing.T) {
	t.Parallel()
	fixture := newFixture([]domain.ReviewOutcome{
		domain.ReviewOutcomeVeryEasy,
		domain.ReviewOutcomeVeryEasy,
	}, Options{})

	fsys := fstest.MapFS{
		"calculus.md": &fstest.MapFile{
			Data: []byte("---\ndependencies:\n  - algebra.md\n---\nderivatives\n---\nanswer"),
		},
		"algebra.md": &fstest.MapFile{
			Data: []byte("---\ntags: []\n---\npolynomials\n---\nanswer"),
		},
	}

	err := fixture.session.Run(context.Background(), fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fixture.presenter.questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(fixture.presenter.questions))
	}
	if !strings.HasPrefix(fixture.presenter.questions[0], "algebra.md") {
		t.Errorf("expected the prerequisite first, got %q", fixture.presenter.questions[0])
	}
	if !strings.HasPrefix(fixture.presenter.questions[1], "calculus.md") {
		t.Errorf("expected the dependent second, got %q", fixture.presenter.questions[1])
	}
}

func TestSessionStopPolicySkipsNotDueCards(t *testing.T) {
	t.Parallel()
	fixture := newFixture(nil, Options{DrainPolicy: DrainPolicyStop})

	// Reviewed yesterday as VeryEasy with a long interval: scheduled weeks
	// out, so nothing is due and no question is asked.
	seedReviewedEntry(t, fixture.history, "done.md", 0)

	fsys := fstest.MapFS{
		"done.md": &fstest.MapFile{
			Data: []byte("---\ntags: []\n---\nfront\n---\nback"),
		},
	}

	err := fixture.session.Run(context.Background(), fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fixture.presenter.questions) != 0 {
		t.Errorf("expected no questions, got %v", fixture.presenter.questions)
	}
	if len(fixture.reviewLog.entries) != 0 {
		t.Errorf("expected no review log entries, got %d", len(fixture.reviewLog.entries))
	}
}

func TestSessionSkipPolicyDrainsMixedQueue(t *testing.T) {
	t.Parallel()
	fixture := newFixture([]domain.ReviewOutcome{
		domain.ReviewOutcomeVeryEasy,
	}, Options{DrainPolicy: DrainPolicySkip})

	seedReviewedEntry(t, fixture.history, "done.md", 0)

	fsys := fstest.MapFS{
		"done.md": &fstest.MapFile{
			Data: []byte("---\ntags: []\n---\nfront\n---\nback"),
		},
		"due.md": &fstest.MapFile{
			Data: []byte("---\ntags: []\n---\nfront\n---\nback"),
		},
	}

	err := fixture.session.Run(context.Background(), fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fixture.presenter.questions) != 1 {
		t.Fatalf("expected 1 question, got %v", fixture.presenter.questions)
	}
	if !strings.HasPrefix(fixture.presenter.questions[0], "due.md") {
		t.Errorf("expected due.md, got %q", fixture.presenter.questions[0])
	}
}

func TestSessionReportsMissingCardFiles(t *testing.T) {
	t.Parallel()

	t.Run("report only by default", func(t *testing.T) {
		t.Parallel()
		fixture := newFixture(nil, Options{})
		seedReviewedEntry(t, fixture.history, "removed.md", 0)

		err := fixture.session.Run(context.Background(), fstest.MapFS{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if fixture.history.get("removed.md", 0) == nil {
			t.Error("expected the orphaned history row to survive")
		}
		if !noticesContain(fixture.presenter.notices, "removed.md") {
			t.Errorf("expected a notice about removed.md, got %v", fixture.presenter.notices)
		}
	})

	t.Run("prune when enabled", func(t *testing.T) {
		t.Parallel()
		fixture := newFixture(nil, Options{PruneMissing: true})
		seedReviewedEntry(t, fixture.history, "removed.md", 0)

		err := fixture.session.Run(context.Background(), fstest.MapFS{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if fixture.history.get("removed.md", 0) != nil {
			t.Error("expected the orphaned history row to be pruned")
		}
	})
}

func TestSessionExcludesCardsWithConflictingPersistedKind(t *testing.T) {
	t.Parallel()
	fixture := newFixture(nil, Options{})

	// History says cloze; the file on disk parses as normal.
	if err := fixture.history.Upsert(context.Background(), &store.HistoryEntry{
		Path:    "changed.md",
		Variant: 1,
		Kind:    domain.CardKindCloze,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fsys := fstest.MapFS{
		"changed.md": &fstest.MapFile{
			Data: []byte("---\ntags: []\n---\nfront\n---\nback"),
		},
	}

	err := fixture.session.Run(context.Background(), fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fixture.presenter.questions) != 0 {
		t.Errorf("expected the conflicting card to be excluded, got %v", fixture.presenter.questions)
	}
	if !noticesContain(fixture.presenter.notices, "changed.md") {
		t.Errorf("expected a notice about changed.md, got %v", fixture.presenter.notices)
	}
}

func TestSessionReportsMalformedCards(t *testing.T) {
	t.Parallel()
	fixture := newFixture(nil, Options{})

	fsys := fstest.MapFS{
		"broken.md": &fstest.MapFile{
			Data: []byte("no structure at all"),
		},
	}

	err := fixture.session.Run(context.Background(), fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !noticesContain(fixture.presenter.notices, "broken.md") {
		t.Errorf("expected a notice about broken.md, got %v", fixture.presenter.notices)
	}
}

func TestSessionAbortPropagates(t *testing.T) {
	t.Parallel()
	// Empty script: the presenter aborts at the first outcome prompt.
	fixture := newFixture(nil, Options{})

	fsys := fstest.MapFS{
		"go.md": &fstest.MapFile{
			Data: []byte("---\ntags: []\n---\nfront\n---\nback"),
		},
	}

	err := fixture.session.Run(context.Background(), fsys)
	if !errors.Is(err, ErrSessionAborted) {
		t.Fatalf("expected ErrSessionAborted, got %v", err)
	}

	// The interrupted review is lost; nothing was committed.
	if len(fixture.reviewLog.entries) != 0 {
		t.Errorf("expected no review log entries, got %d", len(fixture.reviewLog.entries))
	}
}

func TestSessionWritesFreshHistoryOnFirstSight(t *testing.T) {
	t.Parallel()
	fixture := newFixture(nil, Options{})

	fsys := fstest.MapFS{
		"new.md": &fstest.MapFile{
			Data: []byte("---\ntags: []\n---\nfront\n---\nback"),
		},
	}

	// The presenter aborts before any review, but populate has already
	// recorded the card.
	err := fixture.session.Run(context.Background(), fsys)
	if !errors.Is(err, ErrSessionAborted) {
		t.Fatalf("expected ErrSessionAborted, got %v", err)
	}

	entry := fixture.history.get("new.md", 0)
	if entry == nil {
		t.Fatal("expected a fresh history entry for new.md")
	}
	if entry.Review != nil {
		t.Error("expected the fresh entry to carry no review state")
	}
	if entry.Kind != domain.CardKindNormal {
		t.Errorf("expected kind normal, got %v", entry.Kind)
	}
}

func TestParseDrainPolicy(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"stop", "skip"} {
		policy, err := ParseDrainPolicy(valid)
		if err != nil {
			t.Errorf("ParseDrainPolicy(%q): unexpected error %v", valid, err)
		}
		if string(policy) != valid {
			t.Errorf("ParseDrainPolicy(%q) = %q", valid, policy)
		}
	}

	if _, err := ParseDrainPolicy("drop"); err == nil {
		t.Error("expected an error for an unknown policy")
	}
}

// seedReviewedEntry stores a history row whose due date is weeks after the
// frozen run start.
func seedReviewedEntry(t *testing.T, history *fakeHistoryStore, path string, variant int) {
	t.Helper()
	err := history.Upsert(context.Background(), &store.HistoryEntry{
		Path:    path,
		Variant: variant,
		Kind:    domain.CardKindNormal,
		Review: &domain.ReviewState{
			LastReviewedAt:   sessionRunStart.Add(-24 * time.Hour),
			Outcome:          domain.ReviewOutcomeVeryEasy,
			PreviousInterval: 30 * 24 * time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}
}

func noticesContain(notices []string, substring string) bool {
	for _, notice := range notices {
		if strings.Contains(notice, substring) {
			return true
		}
	}
	return false
}
