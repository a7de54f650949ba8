package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/mdquiz/internal/domain"
)

// Common errors
var (
	ErrNilCard        = errors.New("card cannot be nil")
	ErrInvalidOutcome = errors.New("invalid review outcome")
)

// Service defines the interface for scheduling operations.
type Service interface {
	// DueDate computes when the card should next be presented, given the
	// frozen run-start instant.
	DueDate(card *domain.Card, runStart time.Time) time.Time

	// IsDueToday reports whether the card's due date falls on or before the
	// run-start day (date-only comparison).
	IsDueToday(card *domain.Card, runStart time.Time) bool

	// ApplyReview produces the card's successor after a review: a new Card
	// value recording the outcome, the review time, and the gap since the
	// previous review. The input card is not modified.
	ApplyReview(card *domain.Card, outcome domain.ReviewOutcome, now, runStart time.Time) (*domain.Card, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// DueDate implements the Service interface.
func (s *defaultService) DueDate(card *domain.Card, runStart time.Time) time.Time {
	return calculateDueDate(card, runStart, s.params)
}

// IsDueToday implements the Service interface.
func (s *defaultService) IsDueToday(card *domain.Card, runStart time.Time) bool {
	return isDueToday(calculateDueDate(card, runStart, s.params), runStart)
}

// ApplyReview implements the Service interface.
//
// The previous interval of the successor is the gap between this review and
// the one before it; for a first review it is measured from the run start so
// the value is always well defined.
func (s *defaultService) ApplyReview(
	card *domain.Card,
	outcome domain.ReviewOutcome,
	now, runStart time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if !outcome.IsValid() {
		return nil, ErrInvalidOutcome
	}

	previous := now.Sub(runStart)
	if card.Review != nil {
		previous = now.Sub(card.Review.LastReviewedAt)
	}
	if previous < 0 {
		previous = 0
	}

	return card.WithReview(&domain.ReviewState{
		LastReviewedAt:   now,
		Outcome:          outcome,
		PreviousInterval: previous,
	}), nil
}
