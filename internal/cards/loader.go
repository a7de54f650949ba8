package cards

import (
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phrazzld/mdquiz/internal/cloze"
	"github.com/phrazzld/mdquiz/internal/depgraph"
	"github.com/phrazzld/mdquiz/internal/domain"
)

// Structural patterns for card files. A normal card has three sections
// (frontmatter, front, back); a cloze card has two, with occlusion markers
// somewhere in the body.
var (
	normalPattern = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n(.*?)\n---\n(.*)\z`)
	clozePattern  = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n(.*)\z`)
)

// frontmatter is the YAML metadata block every card file starts with.
type frontmatter struct {
	Tags         []string `yaml:"tags"`
	Dependencies []string `yaml:"dependencies"`
}

// Source is one parsed card file before review history is merged in. A cloze
// source fans out into one reviewable variant per occlusion group.
type Source struct {
	Path         string
	Tags         []string
	Dependencies []string
	Kind         domain.CardKind

	// Normal payload
	Front string
	Back  string

	// Cloze payload
	ClozeText string
	Groups    []int
}

// Problem reports a card file that was excluded from the run, and why.
// A problem never aborts the run; the unaffected remainder of the deck
// still loads.
type Problem struct {
	Path   string
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Path, p.Reason)
}

// Dangling reports a declared dependency with no corresponding card file.
// The edge is omitted from the graph so it cannot corrupt ordering.
type Dangling struct {
	From string // card declaring the dependency
	To   string // identity with no card file
}

func (d Dangling) String() string {
	return fmt.Sprintf("%s depends on %s, which has no card file", d.From, d.To)
}

// Deck is the result of loading a card directory: the usable sources, the
// dependency graph over them, and everything that had to be reported.
type Deck struct {
	Sources  []*Source
	Graph    *depgraph.Graph
	Problems []Problem
	Dangling []Dangling

	// Cycle is one dependency cycle found in the declared dependencies, or
	// nil. Ordering degrades under cycles, so the session surfaces this as
	// a warning diagnostic.
	Cycle []string
}

// Closure returns the dependency closure for a card path.
func (d *Deck) Closure(path string) map[string]struct{} {
	return d.Graph.Descendants(path)
}

// Loader discovers and parses markdown card files.
type Loader struct {
	logger *slog.Logger

	// strictDependencies excludes a card entirely when any of its declared
	// dependencies is dangling, instead of only omitting the bad edge.
	strictDependencies bool
}

// NewLoader creates a Loader. If logger is nil, the default logger is used.
func NewLoader(logger *slog.Logger, strictDependencies bool) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:             logger.With(slog.String("component", "card_loader")),
		strictDependencies: strictDependencies,
	}
}

// Load walks fsys for markdown files and assembles the deck. Each card
// declares its full dependency list in frontmatter, so the graph is built
// from a complete first pass before any closure is resolved.
func (l *Loader) Load(fsys fs.FS) (*Deck, error) {
	paths, err := findMarkdown(fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to discover card files: %w", err)
	}

	deck := &Deck{Graph: depgraph.New()}

	parsed := make(map[string]*Source, len(paths))
	for _, path := range paths {
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read card file %s: %w", path, err)
		}

		source, problem := parseSource(path, string(raw))
		if problem != nil {
			l.logger.Warn("excluding card", "path", path, "reason", problem.Reason)
			deck.Problems = append(deck.Problems, *problem)
			continue
		}
		parsed[path] = source
	}

	// Second pass: wire dependencies now that the full card set is known.
	// Dangling edges are flagged and omitted; under strict policy the
	// declaring card is dropped as well.
	for _, path := range sortedKeys(parsed) {
		source := parsed[path]
		deck.Graph.AddNode(path)

		dropped := false
		for _, dep := range source.Dependencies {
			if _, ok := parsed[dep]; !ok {
				dangling := Dangling{From: path, To: dep}
				deck.Dangling = append(deck.Dangling, dangling)
				l.logger.Warn("dangling dependency", "from", dangling.From, "to", dangling.To)
				if l.strictDependencies && !dropped {
					deck.Problems = append(deck.Problems, Problem{
						Path:   path,
						Reason: fmt.Sprintf("depends on missing card %s", dep),
					})
					dropped = true
				}
				continue
			}
			deck.Graph.AddDependency(path, dep)
		}

		if !dropped {
			deck.Sources = append(deck.Sources, source)
		}
	}

	if cycle := deck.Graph.FindCycle(); cycle != nil {
		deck.Cycle = cycle
		l.logger.Warn("dependency cycle detected; review order degrades for the affected cards",
			"cycle", strings.Join(cycle, " -> "))
	}

	return deck, nil
}

// parseSource classifies one card file. Returns the parsed source, or a
// Problem describing why the file was excluded.
func parseSource(path, text string) (*Source, *Problem) {
	if match := normalPattern.FindStringSubmatch(text); match != nil {
		meta, err := parseFrontmatter(match[1])
		if err != nil {
			return nil, &Problem{Path: path, Reason: fmt.Sprintf("invalid frontmatter: %v", err)}
		}
		return &Source{
			Path:         path,
			Tags:         meta.Tags,
			Dependencies: meta.Dependencies,
			Kind:         domain.CardKindNormal,
			Front:        match[2],
			Back:         match[3],
		}, nil
	}

	if match := clozePattern.FindStringSubmatch(text); match != nil {
		meta, err := parseFrontmatter(match[1])
		if err != nil {
			return nil, &Problem{Path: path, Reason: fmt.Sprintf("invalid frontmatter: %v", err)}
		}
		groups := cloze.Groups(match[2])
		if len(groups) == 0 {
			return nil, &Problem{Path: path, Reason: "cloze card does not contain any occlusions"}
		}
		return &Source{
			Path:         path,
			Tags:         meta.Tags,
			Dependencies: meta.Dependencies,
			Kind:         domain.CardKindCloze,
			ClozeText:    match[2],
			Groups:       groups,
		}, nil
	}

	return nil, &Problem{Path: path, Reason: "does not match either normal or cloze pattern"}
}

// parseFrontmatter decodes the YAML metadata block.
func parseFrontmatter(block string) (*frontmatter, error) {
	var meta frontmatter
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// findMarkdown returns every .md path under fsys in lexical order.
func findMarkdown(fsys fs.FS) ([]string, error) {
	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func sortedKeys(m map[string]*Source) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
