package agenda

import (
	"regexp"

	"github.com/dgallion1/agendalink/internal/docket"
)

// Segmenter splits a bounded agenda region into numbered items.
type Segmenter interface {
	Segment(region string) []docket.AgendaItem
}

// itemBoundary matches "N. " where N is 1-100 without a leading zero.
// Numbered references inside item text ("Section 5. Fund") also match;
// they cannot be told apart from real boundaries and split the item.
// \b is ASCII-only in RE2, so a digit right after a non-ASCII letter
// ("é1. ") still starts an item.
var itemBoundary = regexp.MustCompile(`\b([1-9]\d?|100)\.\s+`)

// NumberedSegmenter splits on numeric item prefixes. Text before the first
// prefix is preamble and is dropped. Duplicate numbers are kept as-is.
type NumberedSegmenter struct{}

func (NumberedSegmenter) Segment(region string) []docket.AgendaItem {
	matches := itemBoundary.FindAllStringSubmatchIndex(region, -1)
	items := make([]docket.AgendaItem, 0, len(matches))
	for i, m := range matches {
		textStart := m[1]
		textEnd := len(region)
		if i+1 < len(matches) {
			textEnd = matches[i+1][0]
		}
		items = append(items, docket.AgendaItem{
			ItemNumber: region[m[2]:m[3]],
			RawText:    region[textStart:textEnd],
			Offset:     textStart,
		})
	}
	return items
}

// Boundaries returns the boundary tokens in order, e.g. "12. ".
func Boundaries(region string) []string {
	return itemBoundary.FindAllString(region, -1)
}
