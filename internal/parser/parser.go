package parser

import (
	"path/filepath"
	"strings"
)

// Reader turns a PDF on disk into pages of text and annotations.
type Reader interface {
	Read(path string) (*Document, error)
}

// Document is the page-ordered content of a PDF.
type Document struct {
	Pages []Page
}

// Page is a single PDF page.
type Page struct {
	Number      int          // 1-based
	Text        string       // Extracted plain text, "" if extraction failed
	HasAnnots   bool         // Whether the page carries an /Annots collection
	Annotations []Annotation // In /Annots order
}

// Annotation is the subset of a PDF annotation dictionary the service reads.
type Annotation struct {
	Subtype string // e.g. "Link"
	URI     string // /A /URI target, "" if the annotation has no URI action
}

// IsPDFFilename reports whether a filename carries a .pdf extension.
func IsPDFFilename(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
