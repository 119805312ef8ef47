package extract

import "github.com/couchcryptid/maplist-import/internal/domain"

// signals are the fragments of one location found under a node. Fields are
// first-found-wins: once set, a later sibling cannot overwrite them.
type signals struct {
	name       string
	lat, lng   float64
	hasCoords  bool
	identifier string
}

func (s *signals) merge(child signals) {
	if s.name == "" {
		s.name = child.name
	}
	if !s.hasCoords && child.hasCoords {
		s.lat, s.lng, s.hasCoords = child.lat, child.lng, true
	}
	if s.identifier == "" {
		s.identifier = child.identifier
	}
}

func (s signals) complete() bool {
	return s.name != "" && s.hasCoords && s.identifier != ""
}

// Walker collects locations from a parsed array tree. A Walker holds the state of
// a single extraction and must not be shared between calls.
type Walker struct {
	sourceURL string
	results   []domain.ParsedLocation
	seen      map[string]struct{}
}

// NewWalker creates a Walker that stamps every result with sourceURL.
func NewWalker(sourceURL string) *Walker {
	return &Walker{
		sourceURL: sourceURL,
		seen:      make(map[string]struct{}),
	}
}

// Walk visits the tree and returns every location emitted so far, in discovery order.
func (w *Walker) Walk(root []any) []domain.ParsedLocation {
	w.walk(root)
	return w.results
}

// walk returns the merged signals of node. Signals bubble up so a location whose
// fragments are split across wrapper arrays is emitted at the first ancestor where
// all of them meet.
func (w *Walker) walk(node any) signals {
	arr, ok := node.([]any)
	if !ok {
		return signals{}
	}

	var sig signals
	for _, child := range arr {
		switch v := child.(type) {
		case string:
			if sig.name == "" && isValidName(v) {
				sig.name = v
			}
		case []any:
			if lat, lng, ok := coordinatePair(v); ok && !sig.hasCoords {
				sig.lat, sig.lng, sig.hasCoords = lat, lng, true
			}
			if raw, ok := identifierPair(v); ok {
				if sig.identifier == "" {
					sig.identifier = raw
				}
				// Pair elements are ids, never names.
				continue
			}
			sig.merge(w.walk(v))
		}
	}

	if sig.complete() {
		w.emit(sig)
	}
	return sig
}

func (w *Walker) emit(sig signals) {
	if !domain.ValidCoordinates(sig.lat, sig.lng) {
		return
	}
	id, ok := CanonicalIdentifier(sig.identifier)
	if !ok {
		return
	}
	if _, dup := w.seen[id]; dup {
		return
	}
	name := CleanName(sig.name)
	if name == "" {
		return
	}

	w.seen[id] = struct{}{}
	w.results = append(w.results, domain.ParsedLocation{
		Name:       name,
		Latitude:   sig.lat,
		Longitude:  sig.lng,
		Identifier: id,
		SourceURL:  w.sourceURL,
	})
}
