// Package srs implements the spaced-repetition scheduling algorithm: the
// pure due-date function mapping a card's review history to its next due
// time, and the service producing a card's immutable successor after a
// review. All computations take an explicit run-start instant so results
// are reproducible in tests and stable for the duration of one run.
package srs
