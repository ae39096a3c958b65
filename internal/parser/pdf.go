package parser

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFReader reads page text and annotations with ledongthuc/pdf. When that
// library cannot open a file it falls back to pdfcpu for annotations and to
// pdftotext for text, each if enabled.
type PDFReader struct {
	FallbackPdftotext bool
	FallbackPDFCPU    bool
}

func (p *PDFReader) Read(path string) (*Document, error) {
	pages, err := readLedongthuc(path)
	if err == nil {
		return &Document{Pages: pages}, nil
	}
	if !p.FallbackPDFCPU && !p.FallbackPdftotext {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	var annotPages, textPages []Page
	var annotErr, textErr error = errors.New("pdfcpu fallback disabled"), errors.New("pdftotext fallback disabled")
	if p.FallbackPDFCPU {
		annotPages, annotErr = readPDFCPUAnnotations(path)
	}
	if p.FallbackPdftotext {
		textPages, textErr = readPdftotext(path)
	}
	if annotErr != nil && textErr != nil {
		return nil, fmt.Errorf("parse pdf: %w (pdfcpu: %v; pdftotext: %v)", err, annotErr, textErr)
	}
	return &Document{Pages: mergePages(annotPages, textPages)}, nil
}

func readLedongthuc(path string) (pages []Page, err error) {
	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf library panic: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages = make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		p := Page{Number: i}
		if page.V.IsNull() {
			pages = append(pages, p)
			continue
		}
		if text, err := page.GetPlainText(nil); err == nil {
			p.Text = text
		}
		p.HasAnnots, p.Annotations = ledongthucAnnotations(page)
		pages = append(pages, p)
	}
	return pages, nil
}

func ledongthucAnnotations(page pdflib.Page) (bool, []Annotation) {
	annots := page.V.Key("Annots")
	if annots.IsNull() || annots.Kind() != pdflib.Array {
		return false, nil
	}

	var out []Annotation
	for i := 0; i < annots.Len(); i++ {
		annot := annots.Index(i)
		if annot.IsNull() || annot.Kind() != pdflib.Dict {
			continue
		}
		a := Annotation{Subtype: annot.Key("Subtype").Name()}
		if uri := annot.Key("A").Key("URI"); uri.Kind() == pdflib.String {
			a.URI = uri.RawString()
		}
		out = append(out, a)
	}
	return true, out
}

func readPDFCPUAnnotations(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("ensure page count: %w", err)
	}

	pages := make([]Page, 0, ctx.PageCount)
	for nr := 1; nr <= ctx.PageCount; nr++ {
		p := Page{Number: nr}
		pageDict, _, _, err := ctx.PageDict(nr, false)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", nr, err)
		}
		if obj, found := pageDict.Find("Annots"); found && obj != nil {
			arr, err := ctx.DereferenceArray(obj)
			if err == nil && arr != nil {
				p.HasAnnots = true
				for _, o := range arr {
					d, err := ctx.DereferenceDict(o)
					if err != nil || d == nil {
						continue
					}
					p.Annotations = append(p.Annotations, pdfcpuAnnotation(ctx, d))
				}
			}
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func pdfcpuAnnotation(ctx *model.Context, d types.Dict) Annotation {
	var a Annotation
	if st := d.NameEntry("Subtype"); st != nil {
		a.Subtype = *st
	}
	actObj, found := d.Find("A")
	if !found {
		return a
	}
	action, err := ctx.DereferenceDict(actObj)
	if err != nil || action == nil {
		return a
	}
	uriObj, found := action.Find("URI")
	if !found {
		return a
	}
	o, err := ctx.Dereference(uriObj)
	if err != nil {
		return a
	}
	switch v := o.(type) {
	case types.StringLiteral:
		if s, err := types.StringLiteralToString(v); err == nil {
			a.URI = s
		}
	case types.HexLiteral:
		if s, err := types.HexLiteralToString(v); err == nil {
			a.URI = s
		}
	}
	return a
}

func readPdftotext(path string) ([]Page, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	texts := splitPages(string(out))
	pages := make([]Page, 0, len(texts))
	for i, t := range texts {
		pages = append(pages, Page{Number: i + 1, Text: t})
	}
	// pdftotext ends the last page with a form feed.
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1].Text) == "" {
		pages = pages[:n-1]
	}
	return pages, nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}

// mergePages lays text from one source over annotations from another, by page number.
func mergePages(annotPages, textPages []Page) []Page {
	n := max(len(annotPages), len(textPages))
	pages := make([]Page, n)
	for i := range pages {
		pages[i].Number = i + 1
		if i < len(annotPages) {
			pages[i].HasAnnots = annotPages[i].HasAnnots
			pages[i].Annotations = annotPages[i].Annotations
		}
		if i < len(textPages) {
			pages[i].Text = textPages[i].Text
		}
	}
	return pages
}
