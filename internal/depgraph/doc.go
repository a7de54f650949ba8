// Package depgraph builds and queries the directed "depends-on" graph
// between card identities, including the transitive descendant lookup used
// to resolve each card's dependency closure.
package depgraph
