package review

import (
	"testing"

	"github.com/phrazzld/mdquiz/internal/domain"
)

func TestRenderNormalCard(t *testing.T) {
	t.Parallel()
	card, err := domain.NewNormalCard("go.md", nil, nil, nil, "What is Go?", "A language.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := renderQuestion(card); got != "What is Go?" {
		t.Errorf("unexpected question: %q", got)
	}
	if got := renderAnswer(card); got != "A language." {
		t.Errorf("unexpected answer: %q", got)
	}
}

func TestRenderClozeVariant(t *testing.T) {
	t.Parallel()
	card, err := domain.NewClozeVariant("capitals.md", nil, nil, nil,
		"Answer is £{c1: Paris} and £{c2: France}.", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := renderQuestion(card); got != "Answer is [...] and France." {
		t.Errorf("unexpected question: %q", got)
	}
	if got := renderAnswer(card); got != "Answer is Paris and France." {
		t.Errorf("unexpected answer: %q", got)
	}
}

// A card with unbalanced markers renders as a visible error message; the
// session keeps going.
func TestRenderUnbalancedClozeShowsError(t *testing.T) {
	t.Parallel()
	card, err := domain.NewClozeVariant("broken.md", nil, nil, nil,
		"£{c1: never closed", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := renderQuestion(card); got != occlusionErrorText {
		t.Errorf("expected the error text, got %q", got)
	}
	if got := renderAnswer(card); got != occlusionErrorText {
		t.Errorf("expected the error text, got %q", got)
	}
}
