// Package review drives a complete scheduling run: reconciling persisted
// history with the deck on disk, building the dependency-aware queue, and
// looping over due cards until the drain policy ends the session. Each
// outcome is persisted durably before the next card is served.
package review
