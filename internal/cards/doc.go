// Package cards discovers markdown card files, parses their YAML
// frontmatter and structural sections, and builds the dependency graph over
// the deck. Malformed files and dangling dependency declarations are
// collected as reports rather than failing the run.
package cards
