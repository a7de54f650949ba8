package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phrazzld/mdquiz/internal/domain"
	"github.com/phrazzld/mdquiz/internal/review"
)

// Presenter implements review.Presenter on a plain terminal: questions and
// answers on out, learner input line-by-line from in, operator reports on
// errOut.
type Presenter struct {
	in     *bufio.Scanner
	out    io.Writer
	errOut io.Writer
}

// NewPresenter creates a terminal presenter.
func NewPresenter(in io.Reader, out, errOut io.Writer) *Presenter {
	return &Presenter{
		in:     bufio.NewScanner(in),
		out:    out,
		errOut: errOut,
	}
}

// Ensure Presenter implements review.Presenter
var _ review.Presenter = (*Presenter)(nil)

// ShowQuestion implements review.Presenter.ShowQuestion.
func (p *Presenter) ShowQuestion(ctx context.Context, card *domain.Card, rendered string) error {
	fmt.Fprintf(p.out, "\n── %s", card.Path)
	if card.Kind == domain.CardKindCloze {
		fmt.Fprintf(p.out, " (cloze %d)", card.Variant)
	}
	fmt.Fprintf(p.out, " ──\n\n%s\n", strings.TrimSpace(rendered))
	return nil
}

// WaitForReveal implements review.Presenter.WaitForReveal.
// Any input reveals the answer; end of input aborts the session.
func (p *Presenter) WaitForReveal(ctx context.Context) error {
	fmt.Fprint(p.out, "\nPress enter to show the answer... ")
	if !p.in.Scan() {
		return p.inputEnded()
	}
	return nil
}

// ShowAnswer implements review.Presenter.ShowAnswer.
func (p *Presenter) ShowAnswer(ctx context.Context, card *domain.Card, rendered string) error {
	fmt.Fprintf(p.out, "\n%s\n", strings.TrimSpace(rendered))
	return nil
}

// PromptOutcome implements review.Presenter.PromptOutcome.
// It shows the four options and re-prompts until one of them is chosen.
func (p *Presenter) PromptOutcome(ctx context.Context) (domain.ReviewOutcome, error) {
	fmt.Fprintln(p.out, "\nOptions:")
	for o := domain.ReviewOutcomeAgain; o <= domain.ReviewOutcomeVeryEasy; o++ {
		fmt.Fprintf(p.out, "  %d  %s\n", int(o), o)
	}

	for {
		fmt.Fprint(p.out, "Select an option [1-4]: ")
		if !p.in.Scan() {
			return 0, p.inputEnded()
		}

		choice, err := strconv.Atoi(strings.TrimSpace(p.in.Text()))
		if err == nil {
			outcome := domain.ReviewOutcome(choice)
			if outcome.IsValid() {
				return outcome, nil
			}
		}
		fmt.Fprintln(p.out, "Please enter a number between 1 and 4.")
	}
}

// Notify implements review.Presenter.Notify.
func (p *Presenter) Notify(message string) {
	fmt.Fprintln(p.errOut, message)
}

// inputEnded maps end-of-input to a session abort, or surfaces a real read
// error.
func (p *Presenter) inputEnded() error {
	if err := p.in.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return review.ErrSessionAborted
}
