package cloze

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrUnbalancedOcclusion is returned when an occlusion marker's opening brace
// is never closed. Renders must surface this as a visible message, never as a
// crashed session.
var ErrUnbalancedOcclusion = errors.New("mismatched opening occlusion")

// Placeholder is the text shown in place of the hidden group of a question.
const Placeholder = "[...]"

// markerStart matches the opening of an occlusion marker, e.g. "£{c2: ".
// The extra close brace never appears here; the body runs until the brace
// that balances the opening one.
var markerStart = regexp.MustCompile(`£\{c([0-9]+): ?`)

// Groups returns the distinct occlusion group numbers present in source, in
// ascending order. A cloze source with no groups yields an empty slice; such
// a card is invalid and must not enter the review queue.
func Groups(source string) []int {
	seen := make(map[int]struct{})
	for _, match := range markerStart.FindAllStringSubmatch(source, -1) {
		number, err := strconv.Atoi(match[1])
		if err != nil || number < 1 {
			continue
		}
		seen[number] = struct{}{}
	}

	groups := make([]int, 0, len(seen))
	for number := range seen {
		groups = append(groups, number)
	}
	sort.Ints(groups)
	return groups
}

// RenderAnswer replaces every occlusion marker in source with its unoccluded
// body, producing the full answer text.
func RenderAnswer(source string) (string, error) {
	return render(source, -1)
}

// RenderQuestion replaces markers of the given group with the placeholder and
// every other marker with its unoccluded body, producing the question text
// for that variant.
func RenderQuestion(source string, variant int) (string, error) {
	return render(source, variant)
}

// render performs a single forward scan over the top-level markers of source
// and applies the computed span replacements in one pass. hidden selects the
// group replaced by the placeholder; -1 hides nothing (answer mode).
//
// Replacing whole marker spans, back to front over precomputed offsets, keeps
// nested braces intact and keeps one replacement from corrupting the offsets
// of the next.
func render(source string, hidden int) (string, error) {
	type span struct {
		start, end  int
		replacement string
	}

	var spans []span
	lastEnd := 0
	for _, match := range markerStart.FindAllStringSubmatchIndex(source, -1) {
		start, bodyStart := match[0], match[1]
		if start < lastEnd {
			// Marker opens inside the previous marker's body; the outer
			// replacement already covers it.
			continue
		}

		bodyLen, ok := spanUntilBalanced(source[bodyStart:])
		if !ok {
			return "", ErrUnbalancedOcclusion
		}
		body := source[bodyStart : bodyStart+bodyLen]
		end := bodyStart + bodyLen + 1 // past the matching close brace

		number, err := strconv.Atoi(source[match[2]:match[3]])
		if err != nil {
			return "", ErrUnbalancedOcclusion
		}

		replacement := body
		if number == hidden {
			replacement = Placeholder
		}
		spans = append(spans, span{start: start, end: end, replacement: replacement})
		lastEnd = end
	}

	if len(spans) == 0 {
		return source, nil
	}

	var b strings.Builder
	b.Grow(len(source))
	prev := 0
	for _, s := range spans {
		b.WriteString(source[prev:s.start])
		b.WriteString(s.replacement)
		prev = s.end
	}
	b.WriteString(source[prev:])
	return b.String(), nil
}

// spanUntilBalanced takes the text following an opening brace and returns the
// length of the body before the brace that balances it. Depth starts at 1;
// braces inside the body may nest. Returns false when the text ends before
// the depth returns to zero.
func spanUntilBalanced(text string) (int, bool) {
	depth := 1
	for i, r := range text {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return i, true
		}
	}
	return 0, false
}
