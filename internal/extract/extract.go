// Package extract recovers place records from the markup of a shared list page.
//
// The stages run in order: LocateScript picks the script block holding the list,
// ExtractArray isolates the array literal around the first coordinate group,
// Unescape and ParseLiteral turn it into a tree, and a Walker collects the
// locations whose name, coordinates and identifier meet in one subtree. All
// stages are pure; fetching lives in the web adapter.
package extract

import (
	"fmt"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

// Extract runs every stage over markup. An empty result is reported as
// domain.ErrNoLocationData since a format change looks exactly like an empty list.
func Extract(markup, sourceURL string) ([]domain.ParsedLocation, error) {
	script, err := LocateScript(markup)
	if err != nil {
		return nil, err
	}

	literal, err := ExtractArray(script)
	if err != nil {
		return nil, err
	}

	tree, err := ParseLiteral(Unescape(literal))
	if err != nil {
		return nil, err
	}

	locations := NewWalker(sourceURL).Walk(tree)
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: data array held no complete entries", domain.ErrNoLocationData)
	}
	return locations, nil
}
