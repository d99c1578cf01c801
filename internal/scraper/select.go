package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// firstSelection returns the first element matched by any of the selectors,
// tried in order, or nil when nothing matches.
func firstSelection(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}

// firstText returns the trimmed text of the first match, or "".
func firstText(doc *goquery.Document, selectors []string) string {
	s := firstSelection(doc, selectors)
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.Text())
}

// allMatches returns every element matched by the first selector in the list
// that matches anything; later selectors are fallbacks, not additions.
// Distinct elements can still reference the same target, so callers dedupe
// downstream where it matters (the archiver dedupes by destination filename).
func allMatches(doc *goquery.Document, selectors []string) []*goquery.Selection {
	var out []*goquery.Selection
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			out = append(out, s)
		})
		if len(out) > 0 {
			break
		}
	}
	return out
}

// joinedText collects the trimmed text of every match of the first matching
// selector, comma-joined. Used for categories and tags.
func joinedText(doc *goquery.Document, selectors []string) string {
	var parts []string
	for _, s := range allMatches(doc, selectors) {
		if txt := strings.TrimSpace(s.Text()); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, ", ")
}
