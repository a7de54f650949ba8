package review

import (
	"context"

	"github.com/phrazzld/mdquiz/internal/domain"
)

// Presenter is the presentation and outcome collaborator driving the
// interactive part of a session. The session suspends at exactly one point
// per due card: waiting for the learner's outcome.
type Presenter interface {
	// ShowQuestion displays the rendered question text for a card.
	ShowQuestion(ctx context.Context, card *domain.Card, rendered string) error

	// WaitForReveal blocks until the learner asks to see the answer.
	WaitForReveal(ctx context.Context) error

	// ShowAnswer displays the rendered answer text for a card.
	ShowAnswer(ctx context.Context, card *domain.Card, rendered string) error

	// PromptOutcome returns the learner's recall outcome. Implementations
	// must re-prompt on anything outside the four defined levels; the
	// session never sees an invalid outcome.
	PromptOutcome(ctx context.Context) (domain.ReviewOutcome, error)

	// Notify reports an operator-facing event: a malformed card, a dangling
	// dependency, a history entry with no card file.
	Notify(message string)
}
