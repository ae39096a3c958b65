// Package pdftest writes small, valid PDFs for tests: Helvetica text lines
// and URI link annotations, with a correct cross-reference table.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Page describes one generated page.
type Page struct {
	Lines []string // Each line is drawn with its own Tj operator
	URIs  []string // Each becomes a /Link annotation with a /URI action
	// BareAnnots adds annotations without an action dictionary.
	BareAnnots int
}

// Build returns the bytes of a PDF with the given pages.
func Build(pages []Page) []byte {
	var objs []string
	add := func(body string) int {
		objs = append(objs, body)
		return len(objs)
	}

	catalog := add("") // filled once the page tree number is known
	tree := add("")
	font := add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var kids []string
	for _, pg := range pages {
		var content strings.Builder
		content.WriteString("BT\n/F1 12 Tf\n72 720 Td\n14 TL\n")
		for i, line := range pg.Lines {
			if i > 0 {
				content.WriteString("T*\n")
			}
			fmt.Fprintf(&content, "(%s) Tj\n", escape(line))
		}
		content.WriteString("ET")
		stream := content.String()
		contentsNum := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))

		var annots []string
		for i, uri := range pg.URIs {
			y := 700 - i*16
			n := add(fmt.Sprintf("<< /Type /Annot /Subtype /Link /Rect [72 %d 300 %d] /Border [0 0 0] /A << /Type /Action /S /URI /URI (%s) >> >>",
				y, y+12, escape(uri)))
			annots = append(annots, fmt.Sprintf("%d 0 R", n))
		}
		for i := 0; i < pg.BareAnnots; i++ {
			n := add("<< /Type /Annot /Subtype /Text /Rect [10 10 20 20] /Contents (note) >>")
			annots = append(annots, fmt.Sprintf("%d 0 R", n))
		}

		page := fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R",
			tree, font, contentsNum)
		if len(annots) > 0 {
			page += " /Annots [" + strings.Join(annots, " ") + "]"
		}
		page += " >>"
		kids = append(kids, fmt.Sprintf("%d 0 R", add(page)))
	}

	objs[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree)
	objs[tree-1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, catalog, xref)
	return buf.Bytes()
}

// WriteFile builds a PDF into t.TempDir and returns its path.
func WriteFile(t testing.TB, pages []Page) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agenda.pdf")
	if err := os.WriteFile(path, Build(pages), 0o600); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
