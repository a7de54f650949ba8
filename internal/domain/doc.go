// Package domain contains the core entities of the review scheduler:
// the Card value type (normal cards and cloze variants), review outcomes,
// and their validation rules. Domain types are immutable values; a review
// produces a new Card via WithReview rather than mutating the old one.
package domain
