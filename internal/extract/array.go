package extract

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

// ExtractArray returns the smallest bracketed array enclosing the first coordinate
// anchor in script. The payload has no field name to select on, so position relative
// to a known-shape literal is the only reliable handle.
func ExtractArray(script string) (string, error) {
	loc := coordinateAnchorRe.FindStringIndex(script)
	if loc == nil {
		return "", fmt.Errorf("%w: no coordinate anchor", domain.ErrNoDataArray)
	}

	level := stringLevel(script, loc[0], loc[1])
	start := enclosingStart(script, loc[0], level)
	if start < 0 {
		return "", fmt.Errorf("%w: anchor at %d has no enclosing array", domain.ErrNoDataArray, loc[0])
	}

	end := matchingEnd(script, start, level)
	if end < 0 {
		return "", fmt.Errorf("%w: array at %d is not balanced", domain.ErrNoDataArray, start)
	}
	return script[start : end+1], nil
}

// stringLevel reports how many escaping layers wrap the strings next to the anchor
// at [from, to). The array often sits inside a JS string literal, so its own
// strings are delimited by \" rather than ".
func stringLevel(s string, from, to int) int {
	level := 0
	if i := strings.LastIndexByte(s[:from], '"'); i >= 0 {
		level = quoteLevel(s, i)
	}
	if i := strings.IndexByte(s[to:], '"'); i >= 0 {
		level = max(level, quoteLevel(s, to+i))
	}
	return level
}

// quoteLevel returns the number of unescaping rounds after which the quote at
// s[i] becomes a bare string delimiter.
func quoteLevel(s string, i int) int {
	backslashes := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		backslashes++
	}
	level := 0
	for backslashes%2 == 1 {
		backslashes = (backslashes - 1) / 2
		level++
	}
	return level
}

// isDelimiter reports whether s[i] opens or closes a string at level.
func isDelimiter(s string, i, level int) bool {
	return s[i] == '"' && quoteLevel(s, i) == level
}

// enclosingStart scans backward from just before pos and returns the index of the
// first '[' left unmatched, or -1. Brackets inside strings at level are ignored.
func enclosingStart(s string, pos, level int) int {
	depth := 0
	inString := false
	for i := pos - 1; i >= 0; i-- {
		if isDelimiter(s, i, level) {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch s[i] {
		case ']':
			depth++
		case '[':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// matchingEnd scans forward from the '[' at start and returns the index of its
// matching ']', or -1. Brackets inside strings at level are ignored.
func matchingEnd(s string, start, level int) int {
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		if isDelimiter(s, i, level) {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
