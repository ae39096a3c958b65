package match

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dgallion1/agendalink/internal/docket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func link(url string, title *string) docket.Link {
	return docket.Link{Page: 1, Link: url, Title: title}
}

func sampleDocket() *docket.DocketList {
	return &docket.DocketList{Docket: []docket.AgendaItem{
		{ItemNumber: "1", RawText: "Approve minutes."},
		{ItemNumber: "2", RawText: "Budget review AB-100-2024."},
		{ItemNumber: "3", RawText: "Second reading of AB-100-2024 and Staff Report."},
	}}
}

func TestCodePattern(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Ordinance AB-100-2024 final", "AB-100-2024"},
		{"AB-100-2024", "AB-100-2024"},
		{"  Staff Report ", "Staff Report"},
		{"ab-100-2024", "ab-100-2024"},
		{"X-1-2 then Y-3-4", "X-1-2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CodePattern{}.Canonical(tt.in), tt.in)
	}
}

func TestMatch_FirstMatchWins(t *testing.T) {
	list := sampleDocket()
	sum := New().Match(list, []docket.Link{
		link("https://x.org/AB-100-2024.pdf", docket.StringPtr("AB-100-2024")),
	})

	assert.Equal(t, Summary{Matched: 1}, sum)
	require.Len(t, list.Docket[1].Attachments, 1)
	assert.Equal(t, "AB-100-2024", *list.Docket[1].Attachments[0].Title)
	assert.Empty(t, list.Docket[2].Attachments)
	assert.Empty(t, list.UnmatchedLinks)
}

func TestMatch_CanonicalForm(t *testing.T) {
	list := sampleDocket()
	New().Match(list, []docket.Link{
		link("https://x.org/a.pdf", docket.StringPtr("Resolution AB-100-2024 signed")),
		link("https://x.org/b.pdf", docket.StringPtr("Staff Report")),
	})

	require.Len(t, list.Docket[1].Attachments, 1)
	require.Len(t, list.Docket[2].Attachments, 1)
	assert.Equal(t, "https://x.org/b.pdf", list.Docket[2].Attachments[0].Link)
}

func TestMatch_UnusableTitlesAreUnmatched(t *testing.T) {
	list := sampleDocket()
	links := []docket.Link{
		link("https://x.org/null.pdf", nil),
		link("https://x.org/empty.pdf", docket.StringPtr("")),
		link("https://x.org/blank.pdf", docket.StringPtr("   ")),
		link("https://x.org/other.pdf", docket.StringPtr("ZZ-9-9")),
	}
	sum := New().Match(list, links)

	assert.Equal(t, Summary{Unmatched: 4}, sum)
	assert.Equal(t, links, list.UnmatchedLinks)
	for _, item := range list.Docket {
		assert.Empty(t, item.Attachments)
	}
}

func TestMatch_EveryLinkPlacedOnce(t *testing.T) {
	list := sampleDocket()
	links := []docket.Link{
		link("https://x.org/1.pdf", docket.StringPtr("AB-100-2024")),
		link("https://x.org/2.pdf", nil),
		link("https://x.org/3.pdf", docket.StringPtr("minutes")),
		link("https://x.org/4.pdf", docket.StringPtr("nothing here")),
		link("https://x.org/1.pdf", docket.StringPtr("AB-100-2024")),
	}
	New().Match(list, links)

	seen := 0
	for _, item := range list.Docket {
		seen += len(item.Attachments)
	}
	seen += len(list.UnmatchedLinks)
	assert.Equal(t, len(links), seen)
	assert.Len(t, list.Docket[0].Attachments, 1)
	assert.Len(t, list.Docket[1].Attachments, 2)
	assert.Len(t, list.UnmatchedLinks, 2)
}

func TestMatch_Deterministic(t *testing.T) {
	links := []docket.Link{
		link("https://x.org/1.pdf", docket.StringPtr("AB-100-2024")),
		link("https://x.org/2.pdf", docket.StringPtr("Staff Report")),
		link("https://x.org/3.pdf", nil),
	}
	a, b := sampleDocket(), sampleDocket()
	New().Match(a, links)
	New().Match(b, links)
	assert.Equal(t, a, b)
}

func TestMatch_EmptyDocket(t *testing.T) {
	list := &docket.DocketList{}
	New().Match(list, []docket.Link{link("https://x.org/a.pdf", docket.StringPtr("a"))})
	assert.Len(t, list.UnmatchedLinks, 1)
}

func TestMatch_UnmatchedSerializesAsArray(t *testing.T) {
	list := sampleDocket()
	New().Match(list, nil)

	data, err := json.Marshal(list)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"unmatched_links":[]`), string(data))
	assert.NotContains(t, string(data), `"attachments"`)
}

type upperCanon struct{}

func (upperCanon) Canonical(title string) string { return strings.ToUpper(title) }

func TestMatch_CustomCanonicalizer(t *testing.T) {
	list := &docket.DocketList{Docket: []docket.AgendaItem{{ItemNumber: "1", RawText: "PUBLIC HEARING"}}}
	m := &Matcher{Canon: upperCanon{}}
	sum := m.Match(list, []docket.Link{link("https://x.org/h.pdf", docket.StringPtr("public hearing"))})
	assert.Equal(t, 1, sum.Matched)
}

func TestMatch_FoldedFallback(t *testing.T) {
	list := &docket.DocketList{Docket: []docket.AgendaItem{
		{ItemNumber: "1", RawText: "Annual \ufb01nance\u00a0report"},
		{ItemNumber: "2", RawText: "Annual finance report addendum"},
	}}
	links := []docket.Link{link("https://x.org/f.pdf", docket.StringPtr("finance report"))}

	// The literal match on item 2 wins over the folded one on item 1.
	New().Match(list, links)
	assert.Empty(t, list.Docket[0].Attachments)
	assert.Len(t, list.Docket[1].Attachments, 1)

	// Without a literal candidate the folded comparison places the link.
	list = &docket.DocketList{Docket: list.Docket[:1]}
	list.Docket[0].Attachments = nil
	sum := New().Match(list, links)
	assert.Equal(t, 1, sum.Matched)
	assert.Len(t, list.Docket[0].Attachments, 1)
	assert.Equal(t, "Annual \ufb01nance\u00a0report", list.Docket[0].RawText)

	// Folding off keeps matching strictly literal.
	list = &docket.DocketList{Docket: []docket.AgendaItem{{ItemNumber: "1", RawText: "Annual \ufb01nance\u00a0report"}}}
	sum = (&Matcher{Canon: CodePattern{}}).Match(list, links)
	assert.Equal(t, 1, sum.Unmatched)
}
