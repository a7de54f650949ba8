package srs

import (
	"time"

	"github.com/phrazzld/mdquiz/internal/domain"
)

// calculateDueDate maps a card's review history to the moment it should next
// be presented. runStart is the single frozen "now" captured when the
// scheduling run began; using it everywhere keeps the queue order stable
// while the queue is being processed.
//
// Behavior per outcome of the most recent review:
//   - never reviewed, or Again: due immediately (runStart).
//   - Hard: the previous interval shrinks (×HardMultiplier) but never below
//     HardMinimumGap.
//   - Easy: intervals of EasyGrownThreshold or more grow ×EasyMultiplier;
//     shorter ones graduate to the midnight EasyGraduationDays after the last
//     review's date. Capped at EasyCapDays after the last review.
//   - VeryEasy: same shape with the VeryEasy settings.
func calculateDueDate(card *domain.Card, runStart time.Time, params *Params) time.Time {
	review := card.Review
	if review == nil {
		return runStart
	}

	last := review.LastReviewedAt
	previous := review.PreviousInterval

	switch review.Outcome {
	case domain.ReviewOutcomeAgain:
		return runStart

	case domain.ReviewOutcomeHard:
		gap := scaleInterval(previous, params.HardMultiplier)
		if gap < params.HardMinimumGap {
			gap = params.HardMinimumGap
		}
		return last.Add(gap)

	case domain.ReviewOutcomeEasy:
		var due time.Time
		if previous >= params.EasyGrownThreshold {
			due = last.Add(scaleInterval(previous, params.EasyMultiplier))
		} else {
			due = midnightAfter(last, params.EasyGraduationDays)
		}
		return capDueDate(due, last, params.EasyCapDays)

	case domain.ReviewOutcomeVeryEasy:
		var due time.Time
		if previous >= params.VeryEasyGrownThreshold {
			due = last.Add(scaleInterval(previous, params.VeryEasyMultiplier))
		} else {
			due = midnightAfter(last, params.VeryEasyGraduationDays)
		}
		return capDueDate(due, last, params.VeryEasyCapDays)

	default:
		// Unreachable for validated cards; treat like a fresh card so a
		// corrupt outcome surfaces as an immediately due review instead of
		// silently hiding the card.
		return runStart
	}
}

// scaleInterval multiplies a duration by a float factor.
func scaleInterval(d time.Duration, factor float64) time.Duration {
	return time.Duration(float64(d) * factor)
}

// midnightAfter returns 00:00 on the day `days` after t's calendar date.
func midnightAfter(t time.Time, days int) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location()).AddDate(0, 0, days)
}

// capDueDate bounds a due date at capDays after the last review.
func capDueDate(due, last time.Time, capDays int) time.Time {
	limit := last.AddDate(0, 0, capDays)
	if due.After(limit) {
		return limit
	}
	return due
}

// isDueToday compares calendar dates only: a card is due today when its due
// date's day is on or before the run-start day, independent of time of day.
func isDueToday(due, runStart time.Time) bool {
	dueYear, dueMonth, dueDay := due.Date()
	startYear, startMonth, startDay := runStart.Date()
	dueDate := time.Date(dueYear, dueMonth, dueDay, 0, 0, 0, 0, due.Location())
	startDate := time.Date(startYear, startMonth, startDay, 0, 0, 0, 0, due.Location())
	return !dueDate.After(startDate)
}
