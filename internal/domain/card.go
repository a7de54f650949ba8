package domain

import (
	"errors"
	"fmt"
	"time"
)

// Card-specific validation errors
var (
	// ErrCardPathEmpty is returned when a card's relative path is empty.
	ErrCardPathEmpty = errors.New("card path cannot be empty")

	// ErrCardKindInvalid is returned when a card's kind is neither normal nor cloze.
	ErrCardKindInvalid = errors.New("card kind must be normal or cloze")

	// ErrCardFrontEmpty is returned when a normal card has no front text.
	ErrCardFrontEmpty = errors.New("normal card front cannot be empty")

	// ErrCardSourceEmpty is returned when a cloze card has no source text.
	ErrCardSourceEmpty = errors.New("cloze card source cannot be empty")

	// ErrCardVariantInvalid is returned when a cloze variant number is not positive,
	// or when a normal card carries a non-zero variant number.
	ErrCardVariantInvalid = errors.New("invalid cloze variant number")

	// ErrCardSelfDependency is returned when a card's dependency closure
	// contains the card itself.
	ErrCardSelfDependency = errors.New("card cannot depend on itself")

	// ErrReviewStateIncomplete is returned when only some of the review
	// history fields are set. The three fields are written together on every
	// review, so a partial state can only come from corrupted storage.
	ErrReviewStateIncomplete = errors.New("review state must set time, outcome and interval together")
)

// CardKind distinguishes the two card variants.
type CardKind string

// Possible card kinds. These values are also the storage representation.
const (
	CardKindNormal CardKind = "normal"
	CardKindCloze  CardKind = "cloze"
)

// ReviewState holds the persisted history of a card's most recent review.
// A card that has never been reviewed has a nil *ReviewState; a non-nil
// state always has all three fields populated.
type ReviewState struct {
	LastReviewedAt   time.Time     // when the card was last reviewed
	Outcome          ReviewOutcome // learner-reported recall quality
	PreviousInterval time.Duration // gap between the two most recent reviews
}

// Validate checks that the review state is internally consistent.
func (r *ReviewState) Validate() error {
	if r == nil {
		return nil
	}
	if r.LastReviewedAt.IsZero() || r.PreviousInterval < 0 {
		return ErrReviewStateIncomplete
	}
	if !r.Outcome.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidReviewOutcome, int(r.Outcome))
	}
	return nil
}

// Card is one reviewable unit: either a whole normal card or a single cloze
// variant of a shared source text. Kind selects which payload fields are
// meaningful. Cards are treated as immutable values: applying a review
// outcome produces a new Card rather than mutating this one.
type Card struct {
	// Path is the card's identity: the markdown file's path relative to the
	// deck root. Stable across runs.
	Path string

	// Tags carries the frontmatter tag list. Informational only.
	Tags []string

	// DependsOn is the card's full dependency closure: every identity this
	// card transitively depends on. Populated from the dependency graph at
	// construction time. Never contains Path itself.
	DependsOn map[string]struct{}

	// Review is the persisted history of the most recent review, or nil if
	// the card has never been reviewed.
	Review *ReviewState

	// Kind selects the variant payload below.
	Kind CardKind

	// Front and Back are the question/answer text of a normal card.
	Front string
	Back  string

	// Source is the cloze card's occlusion-marked text and Variant the
	// occlusion group number this card hides. Variant is 0 for normal cards
	// and positive for cloze variants.
	Source  string
	Variant int
}

// NewNormalCard builds a validated normal card.
func NewNormalCard(
	path string,
	tags []string,
	dependsOn map[string]struct{},
	review *ReviewState,
	front, back string,
) (*Card, error) {
	card := &Card{
		Path:      path,
		Tags:      tags,
		DependsOn: dependsOn,
		Review:    review,
		Kind:      CardKindNormal,
		Front:     front,
		Back:      back,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// NewClozeVariant builds a validated cloze variant card.
func NewClozeVariant(
	path string,
	tags []string,
	dependsOn map[string]struct{},
	review *ReviewState,
	source string,
	variant int,
) (*Card, error) {
	card := &Card{
		Path:      path,
		Tags:      tags,
		DependsOn: dependsOn,
		Review:    review,
		Kind:      CardKindCloze,
		Source:    source,
		Variant:   variant,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.Path == "" {
		return ErrCardPathEmpty
	}

	switch c.Kind {
	case CardKindNormal:
		if c.Front == "" {
			return ErrCardFrontEmpty
		}
		if c.Variant != 0 {
			return ErrCardVariantInvalid
		}
	case CardKindCloze:
		if c.Source == "" {
			return ErrCardSourceEmpty
		}
		if c.Variant < 1 {
			return ErrCardVariantInvalid
		}
	default:
		return ErrCardKindInvalid
	}

	if _, ok := c.DependsOn[c.Path]; ok {
		return ErrCardSelfDependency
	}

	return c.Review.Validate()
}

// DependsOnCard reports whether path is in this card's dependency closure.
func (c *Card) DependsOnCard(path string) bool {
	_, ok := c.DependsOn[path]
	return ok
}

// WithReview returns a copy of the card carrying the given review state.
// The receiver is not modified; payload fields are shared since cards are
// never mutated after construction.
func (c *Card) WithReview(review *ReviewState) *Card {
	next := *c
	next.Review = review
	return &next
}
