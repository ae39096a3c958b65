// Package match assigns resolved attachment links to agenda items.
package match

import (
	"regexp"
	"strings"

	"github.com/dgallion1/agendalink/internal/docket"
	"golang.org/x/text/unicode/norm"
)

// Canonicalizer reduces a resolved title to the identifier most likely to
// appear in agenda text.
type Canonicalizer interface {
	Canonical(title string) string
}

var codePattern = regexp.MustCompile(`[A-Z]+-\d+-\d+`)

// CodePattern extracts file-number style identifiers such as AB-123-4567.
// Titles without one are returned trimmed.
type CodePattern struct{}

func (CodePattern) Canonical(title string) string {
	if m := codePattern.FindString(title); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(title)
}

// Summary counts where links ended up.
type Summary struct {
	Matched   int
	Unmatched int
}

// Matcher places each link on the first agenda item whose raw text contains
// its title or canonical form.
//
// When Fold is set, a link no item contains literally gets a second pass
// that compares Fold(raw_text) against Fold(title). Links with a literal
// match are never moved by it.
type Matcher struct {
	Canon Canonicalizer
	Fold  func(string) string
}

// New returns a Matcher using CodePattern and NFKC folding, so ligatures
// and no-break spaces from text extraction still match plain titles.
func New() *Matcher {
	return &Matcher{Canon: CodePattern{}, Fold: norm.NFKC.String}
}

// Match appends every link to exactly one place: the attachments of the first
// matching item, or list.UnmatchedLinks. Links without a usable title are
// always unmatched.
func (m *Matcher) Match(list *docket.DocketList, links []docket.Link) Summary {
	var sum Summary
	if list.UnmatchedLinks == nil {
		list.UnmatchedLinks = []docket.Link{}
	}
	for _, link := range links {
		if i := m.find(list.Docket, link); i >= 0 {
			list.Docket[i].Attachments = append(list.Docket[i].Attachments, link)
			sum.Matched++
			continue
		}
		list.UnmatchedLinks = append(list.UnmatchedLinks, link)
		sum.Unmatched++
	}
	return sum
}

func (m *Matcher) find(items []docket.AgendaItem, link docket.Link) int {
	if link.Title == nil {
		return -1
	}
	raw := *link.Title
	if strings.TrimSpace(raw) == "" {
		return -1
	}
	canon := m.canonical(raw)
	if i := firstContaining(items, raw, canon, nil); i >= 0 || m.Fold == nil {
		return i
	}
	return firstContaining(items, m.Fold(raw), m.Fold(canon), m.Fold)
}

// firstContaining returns the index of the first item whose text, passed
// through fold when set, contains raw or a non-empty canon.
func firstContaining(items []docket.AgendaItem, raw, canon string, fold func(string) string) int {
	for i, item := range items {
		text := item.RawText
		if fold != nil {
			text = fold(text)
		}
		if strings.Contains(text, raw) {
			return i
		}
		if canon != "" && strings.Contains(text, canon) {
			return i
		}
	}
	return -1
}

func (m *Matcher) canonical(title string) string {
	if m.Canon == nil {
		return CodePattern{}.Canonical(title)
	}
	return m.Canon.Canonical(title)
}
