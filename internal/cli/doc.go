// Package cli implements the terminal presenter: plain-text question and
// answer display, the outcome prompt, and operator-facing reports.
package cli
