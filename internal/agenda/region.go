package agenda

import (
	"regexp"
	"strings"

	"github.com/dgallion1/agendalink/internal/parser"
)

var (
	startMarker = regexp.MustCompile(`(?i)CALL TO ORDER`)
	endMarker   = regexp.MustCompile(`(?i)ADJOURNMENT`)
)

// Region is the bounded agenda text of a document.
type Region struct {
	Combined string // All page text, flattened to one line
	Text     string // Combined[Start:End]
	Start    int
	End      int
}

// FlattenPages joins page texts with single spaces and replaces newlines
// with spaces. Other characters are kept as extracted, so item text stays a
// substring of the document text.
func FlattenPages(pages []parser.Page) string {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	combined := strings.Join(texts, " ")
	return strings.ReplaceAll(combined, "\n", " ")
}

// ExtractRegion flattens pages and bounds the agenda between the first
// "CALL TO ORDER" and the first "ADJOURNMENT" after it, both inclusive of
// the end marker. Missing markers fail open to the start or end of text.
func ExtractRegion(pages []parser.Page) Region {
	return Bound(FlattenPages(pages))
}

// Bound locates the agenda region within already-flattened text.
func Bound(combined string) Region {
	start := 0
	if loc := startMarker.FindStringIndex(combined); loc != nil {
		start = loc[1]
	}

	end := len(combined)
	if loc := endMarker.FindStringIndex(combined[start:]); loc != nil {
		end = start + loc[1]
	}

	return Region{
		Combined: combined,
		Text:     combined[start:end],
		Start:    start,
		End:      end,
	}
}
