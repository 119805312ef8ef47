package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// LinkKind classifies a list URL supplied by a caller.
type LinkKind int

const (
	LinkUnknown LinkKind = iota
	LinkShort
	LinkCanonical
)

var (
	// canonicalHostRe matches google.<tld> and www.google.<tld>, e.g. "www.google.co.uk".
	canonicalHostRe = regexp.MustCompile(`^(?:www\.)?google\.[a-z]{2,3}(?:\.[a-z]{2})?$`)

	// mapsHostRe matches maps.google.<tld>, which serves maps on every path.
	mapsHostRe = regexp.MustCompile(`^maps\.google\.[a-z]{2,3}(?:\.[a-z]{2})?$`)
)

// ClassifyLink parses raw and reports whether it is a short share link or a canonical
// maps URL. Anything else yields ErrInvalidInput.
func ClassifyLink(raw string) (*url.URL, LinkKind, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, LinkUnknown, fmt.Errorf("%w: empty url", ErrInvalidInput)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, LinkUnknown, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, LinkUnknown, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidInput, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "maps.app.goo.gl":
		return u, LinkShort, nil
	case host == "goo.gl" && strings.HasPrefix(u.Path, "/maps"):
		return u, LinkShort, nil
	case mapsHostRe.MatchString(host):
		return u, LinkCanonical, nil
	case canonicalHostRe.MatchString(host) && strings.HasPrefix(u.Path, "/maps"):
		return u, LinkCanonical, nil
	default:
		return nil, LinkUnknown, fmt.Errorf("%w: %q is not a maps link", ErrInvalidInput, host)
	}
}

// IdentifierURL builds the canonical place URL from a normalized CID.
func IdentifierURL(cid string) string {
	return "https://maps.google.com/?cid=" + cid
}

// CoordinateSearchURL builds the fallback place URL for items without a CID.
func CoordinateSearchURL(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%.6f,%.6f", lat, lng)
}

// CanonicalURL prefers the identifier form and falls back to coordinates.
func CanonicalURL(item ImportItem) string {
	if item.Identifier != "" {
		return IdentifierURL(item.Identifier)
	}
	return CoordinateSearchURL(item.Latitude, item.Longitude)
}
