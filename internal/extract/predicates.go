package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Anchors recovered from the page format. They are not a contract; when the source
// drifts, change these and leave the walk alone.
const (
	// markerToken prefixes knowledge graph ids ("/g/11b6..."), which appear once
	// or more per list entry and almost nowhere else.
	markerToken = "/g"

	maxNameLength = 200
)

var (
	// coordinateAnchorRe finds the first [null,null,<lat>,<lng> group in script text.
	coordinateAnchorRe = regexp.MustCompile(`\[null,null,-?\d+(?:\.\d+)?,-?\d+(?:\.\d+)?[,\]]`)

	// identifierDigitsRe matches the 15–25 digit strings of an identifier pair.
	identifierDigitsRe = regexp.MustCompile(`^\d{15,25}$`)

	// signedIdentifierRe matches the second pair element, which may be negative.
	signedIdentifierRe = regexp.MustCompile(`^-?\d{15,25}$`)

	// plusCodeRe matches a string that is nothing but a plus code, e.g. "7JVW+9M8".
	plusCodeRe = regexp.MustCompile(`^[A-Za-z0-9]{4,8}\+[A-Za-z0-9]{0,3}$`)

	// numeralRe matches bare, optionally signed numbers such as "-4611686018427381467".
	numeralRe = regexp.MustCompile(`^-?\d+$`)
)

// isValidName reports whether s can serve as a place name signal.
func isValidName(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 1 || n > maxNameLength {
		return false
	}
	if strings.HasPrefix(s, markerToken) || strings.HasPrefix(s, "http") {
		return false
	}
	if numeralRe.MatchString(s) {
		return false
	}
	return !plusCodeRe.MatchString(s)
}

// coordinatePair matches [null, null, <lat>, <lng>, ...].
func coordinatePair(arr []any) (lat, lng float64, ok bool) {
	if len(arr) < 4 || arr[0] != nil || arr[1] != nil {
		return 0, 0, false
	}
	lat, latOK := arr[2].(float64)
	lng, lngOK := arr[3].(float64)
	if !latOK || !lngOK {
		return 0, 0, false
	}
	return lat, lng, true
}

// identifierPair matches ["<15–25 digits>", "<optionally signed 15–25 digits>"] and
// returns the raw second element.
func identifierPair(arr []any) (string, bool) {
	if len(arr) != 2 {
		return "", false
	}
	first, ok := arr[0].(string)
	if !ok || !identifierDigitsRe.MatchString(first) {
		return "", false
	}
	second, ok := arr[1].(string)
	if !ok || !signedIdentifierRe.MatchString(second) {
		return "", false
	}
	return second, true
}

// isCanonicalIdentifier reports whether id is a non-negative 15–25 digit string.
func isCanonicalIdentifier(id string) bool {
	return identifierDigitsRe.MatchString(id)
}
