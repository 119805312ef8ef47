package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

// LocateScript returns the text of the <script> block with the most marker tokens.
// Ties go to the earliest block.
func LocateScript(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("%w: parse markup: %v", domain.ErrNoLocationData, err)
	}

	best, bestCount := "", 0
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if n := strings.Count(text, markerToken); n > bestCount {
			best, bestCount = text, n
		}
	})

	if bestCount == 0 {
		return "", fmt.Errorf("%w: no script contains %q", domain.ErrNoLocationData, markerToken)
	}
	return best, nil
}
