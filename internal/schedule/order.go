package schedule

import (
	"time"

	"github.com/phrazzld/mdquiz/internal/domain"
	"github.com/phrazzld/mdquiz/internal/domain/srs"
)

// Ordering is the total order over cards used by the review queue. Among
// unrelated cards the earlier due date wins; among cards in a dependency
// relation the prerequisite is forced ahead whenever it is actually due, so
// a learner never meets a dependent before its prerequisite on a day both
// are due, while a dependent is not starved once the prerequisite stops
// being due.
//
// The order is only strict when the dependency graph is acyclic; under a
// cyclic (malformed) deck both directions of the relation can hold and the
// order degrades. That input is diagnosed at graph build time and
// deliberately not corrected here.
type Ordering struct {
	scheduler srs.Service
	runStart  time.Time
}

// NewOrdering creates an ordering anchored at the given frozen run-start
// instant.
func NewOrdering(scheduler srs.Service, runStart time.Time) *Ordering {
	return &Ordering{
		scheduler: scheduler,
		runStart:  runStart,
	}
}

// Less reports whether a sorts before b.
func (o *Ordering) Less(a, b *domain.Card) bool {
	switch {
	case b.DependsOnCard(a.Path):
		// a is a prerequisite of b: a wins outright while it is due.
		if o.scheduler.IsDueToday(a, o.runStart) {
			return true
		}
		return !o.scheduler.DueDate(a, o.runStart).After(o.scheduler.DueDate(b, o.runStart))

	case a.DependsOnCard(b.Path):
		// Mirror case: b must come first while b is due.
		if o.scheduler.IsDueToday(b, o.runStart) {
			return false
		}
		return o.scheduler.DueDate(a, o.runStart).Before(o.scheduler.DueDate(b, o.runStart))

	default:
		return o.scheduler.DueDate(a, o.runStart).Before(o.scheduler.DueDate(b, o.runStart))
	}
}

// Equal reports whether a and b occupy the same position in the order.
// Cards in a dependency relation are never equal; they must stay orderable
// relative to each other even with identical due dates.
func (o *Ordering) Equal(a, b *domain.Card) bool {
	if b.DependsOnCard(a.Path) || a.DependsOnCard(b.Path) {
		return false
	}
	return o.scheduler.DueDate(a, o.runStart).Equal(o.scheduler.DueDate(b, o.runStart))
}
