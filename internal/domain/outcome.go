package domain

import "errors"

// ErrInvalidReviewOutcome is returned when an outcome is outside 1..4.
var ErrInvalidReviewOutcome = errors.New("invalid review outcome")

// ReviewOutcome represents the learner-reported recall quality of a review.
// The integer value is also the wire and storage representation.
type ReviewOutcome int

// Possible review outcome values
const (
	ReviewOutcomeAgain    ReviewOutcome = 1 // unable to answer
	ReviewOutcomeHard     ReviewOutcome = 2
	ReviewOutcomeEasy     ReviewOutcome = 3
	ReviewOutcomeVeryEasy ReviewOutcome = 4
)

// IsValid reports whether the outcome is one of the four defined levels.
func (o ReviewOutcome) IsValid() bool {
	return o >= ReviewOutcomeAgain && o <= ReviewOutcomeVeryEasy
}

// String returns the label shown to the learner when choosing an outcome.
func (o ReviewOutcome) String() string {
	switch o {
	case ReviewOutcomeAgain:
		return "Unable to answer"
	case ReviewOutcomeHard:
		return "Hard"
	case ReviewOutcomeEasy:
		return "Easy"
	case ReviewOutcomeVeryEasy:
		return "Very easy"
	default:
		return "Unknown"
	}
}
