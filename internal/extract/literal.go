package extract

import (
	"fmt"
	"strings"

	"github.com/titanous/json5"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

// sentinel stands in for escaped backslashes while quotes are unescaped, so a
// `\\"` sequence is not read as an escaped quote. NUL never occurs in script text.
const sentinel = "\x00"

// Unescape removes the string-literal escaping layer around an extracted array.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, `\\`, sentinel)
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, sentinel, `\`)
}

// ParseLiteral evaluates a nested array literal into a tree of []any, string,
// float64 and nil. Objects or any other value kind are rejected.
func ParseLiteral(s string) ([]any, error) {
	var root any
	if err := json5.Unmarshal([]byte(s), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedData, err)
	}

	arr, ok := root.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T, not an array", domain.ErrMalformedData, root)
	}
	if err := checkLiteral(arr); err != nil {
		return nil, err
	}
	return arr, nil
}

func checkLiteral(node any) error {
	switch v := node.(type) {
	case nil, string, float64:
		return nil
	case []any:
		for _, child := range v {
			if err := checkLiteral(child); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unexpected %T in array literal", domain.ErrMalformedData, node)
	}
}
