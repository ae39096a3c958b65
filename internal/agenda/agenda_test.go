package agenda

import (
	"strings"
	"testing"

	"github.com/dgallion1/agendalink/internal/parser"
)

func pages(texts ...string) []parser.Page {
	out := make([]parser.Page, len(texts))
	for i, t := range texts {
		out[i] = parser.Page{Number: i + 1, Text: t}
	}
	return out
}

func TestFlattenPages_JoinsAndReplacesNewlines(t *testing.T) {
	got := FlattenPages(pages("first\nline", "second"))
	want := "first line second"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFlattenPages_KeepsExtractedCharacters(t *testing.T) {
	// "ﬁ" ligature and no-break space pass through unchanged.
	in := "\ufb01nance\u00a0report"
	if got := FlattenPages(pages(in)); got != in {
		t.Errorf("expected %q, got %q", in, got)
	}
}

func TestSegment_CompatibilityDigitsDoNotSplit(t *testing.T) {
	// A superscript "¹" is not an item number.
	text := "CALL TO ORDER 1. Budget see note \u00b9. Fund \ufb01nance ADJOURNMENT"
	region := ExtractRegion(pages(text))
	items := NumberedSegmenter{}.Segment(region.Text)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	if !strings.Contains(text, items[0].RawText) {
		t.Errorf("raw text %q is not a substring of the page text", items[0].RawText)
	}
}

func TestExtractRegion_BothMarkers(t *testing.T) {
	text := "Preamble CALL TO ORDER 1. Approve minutes. ADJOURNMENT trailing notes ADJOURNMENT"
	r := ExtractRegion(pages(text))

	if r.Text != " 1. Approve minutes. ADJOURNMENT" {
		t.Errorf("unexpected region %q", r.Text)
	}
	markerEnd := strings.Index(text, "CALL TO ORDER") + len("CALL TO ORDER")
	if r.Start != markerEnd {
		t.Errorf("expected start %d, got %d", markerEnd, r.Start)
	}
	firstAdj := strings.Index(text, "ADJOURNMENT") + len("ADJOURNMENT")
	if r.End != firstAdj {
		t.Errorf("expected end %d, got %d", firstAdj, r.End)
	}
	if r.Combined[r.Start:r.End] != r.Text {
		t.Error("expected region text to be a substring of combined text")
	}
}

func TestExtractRegion_CaseInsensitive(t *testing.T) {
	r := ExtractRegion(pages("x Call to Order 1. Item adjournment y"))
	if r.Text != " 1. Item adjournment" {
		t.Errorf("unexpected region %q", r.Text)
	}
}

func TestExtractRegion_NoStartMarker(t *testing.T) {
	r := ExtractRegion(pages("1. Item ADJOURNMENT after"))
	if r.Start != 0 {
		t.Errorf("expected start 0, got %d", r.Start)
	}
	if r.Text != "1. Item ADJOURNMENT" {
		t.Errorf("unexpected region %q", r.Text)
	}
}

func TestExtractRegion_NoEndMarker(t *testing.T) {
	r := ExtractRegion(pages("CALL TO ORDER 1. Item", "2. Other"))
	if r.End != len(r.Combined) {
		t.Errorf("expected end at text length %d, got %d", len(r.Combined), r.End)
	}
	if r.Text != " 1. Item 2. Other" {
		t.Errorf("unexpected region %q", r.Text)
	}
}

func TestExtractRegion_AdjournmentBeforeStartIgnored(t *testing.T) {
	r := ExtractRegion(pages("ADJOURNMENT CALL TO ORDER 1. Item ADJOURNMENT"))
	if r.Text != " 1. Item ADJOURNMENT" {
		t.Errorf("unexpected region %q", r.Text)
	}
}

func TestExtractRegion_Empty(t *testing.T) {
	r := ExtractRegion(nil)
	if r.Text != "" || r.Start != 0 || r.End != 0 {
		t.Errorf("expected empty region, got %+v", r)
	}
}

func TestNumberedSegmenter_Basic(t *testing.T) {
	region := " blah 1. Approve minutes. 2. Budget review AB-100-2024. ADJOURNMENT"
	items := NumberedSegmenter{}.Segment(region)

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ItemNumber != "1" || items[0].RawText != "Approve minutes. " {
		t.Errorf("unexpected item 1: %+v", items[0])
	}
	if items[1].ItemNumber != "2" || items[1].RawText != "Budget review AB-100-2024. ADJOURNMENT" {
		t.Errorf("unexpected item 2: %+v", items[1])
	}
}

func TestNumberedSegmenter_NumberRange(t *testing.T) {
	tests := []struct {
		region string
		want   []string
	}{
		{"9. a 10. b 99. c 100. d", []string{"9", "10", "99", "100"}},
		{"0. zero 01. lead", nil},
		{"101. too big 1000. way too big", nil},
		{"v1. no boundary 3.5 decimal", nil},
		{"1.\tTab separated", []string{"1"}},
		{"1.no space", nil},
	}
	for _, tt := range tests {
		items := NumberedSegmenter{}.Segment(tt.region)
		var got []string
		for _, it := range items {
			got = append(got, it.ItemNumber)
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("Segment(%q) numbers = %v, want %v", tt.region, got, tt.want)
		}
	}
}

func TestNumberedSegmenter_InlineNumberSplits(t *testing.T) {
	// A numbered reference inside item text is treated as a boundary.
	items := NumberedSegmenter{}.Segment("1. Amend Section 5. Fund transfers")
	if len(items) != 2 {
		t.Fatalf("expected inline reference to split into 2 items, got %d", len(items))
	}
	if items[1].ItemNumber != "5" {
		t.Errorf("expected second item number 5, got %q", items[1].ItemNumber)
	}
}

func TestNumberedSegmenter_ASCIIWordBoundary(t *testing.T) {
	if items := (NumberedSegmenter{}).Segment("1. Plan B12. Fund"); len(items) != 1 {
		t.Errorf("digit after an ASCII letter must not split, got %+v", items)
	}
	items := NumberedSegmenter{}.Segment("1. Café1. Fund")
	if len(items) != 2 {
		t.Fatalf("digit after a non-ASCII letter splits, got %d items", len(items))
	}
	if items[1].ItemNumber != "1" || items[1].RawText != "Fund" {
		t.Errorf("unexpected second item %+v", items[1])
	}
}

func TestNumberedSegmenter_DuplicateNumbersKept(t *testing.T) {
	items := NumberedSegmenter{}.Segment("1. First 1. Again")
	if len(items) != 2 || items[0].ItemNumber != "1" || items[1].ItemNumber != "1" {
		t.Errorf("expected duplicate item numbers preserved, got %+v", items)
	}
}

func TestNumberedSegmenter_Reconstruction(t *testing.T) {
	region := " Opening remarks. 1. Roll call. 2. Consent agenda 3. Public hearing. 4. Other"
	items := NumberedSegmenter{}.Segment(region)
	bounds := Boundaries(region)

	if len(bounds) != len(items) {
		t.Fatalf("expected %d boundaries, got %d", len(items), len(bounds))
	}

	var sb strings.Builder
	if len(items) > 0 {
		sb.WriteString(region[:items[0].Offset-len(bounds[0])])
	}
	for i, it := range items {
		sb.WriteString(bounds[i])
		sb.WriteString(it.RawText)
		if region[it.Offset:it.Offset+len(it.RawText)] != it.RawText {
			t.Errorf("item %d text is not at its recorded offset", i)
		}
	}
	if sb.String() != region {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", sb.String(), region)
	}
}

func TestNumberedSegmenter_NoItems(t *testing.T) {
	items := NumberedSegmenter{}.Segment("no numbered items here")
	if len(items) != 0 {
		t.Errorf("expected 0 items, got %d", len(items))
	}
}
