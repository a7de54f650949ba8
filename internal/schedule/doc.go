// Package schedule orders cards for review: a dependency-aware total order
// over card values and the minimum-priority queue the session drains.
package schedule
