package links

import (
	"strings"

	"github.com/dgallion1/agendalink/internal/docket"
	"github.com/dgallion1/agendalink/internal/parser"
)

// Collect returns every annotation URI containing ".pdf", in page order and
// then annotation order. Titles are left unset for the resolver.
func Collect(pages []parser.Page) []docket.Link {
	var out []docket.Link
	for _, p := range pages {
		if !p.HasAnnots {
			continue
		}
		for _, a := range p.Annotations {
			if a.URI == "" || !strings.Contains(a.URI, ".pdf") {
				continue
			}
			out = append(out, docket.Link{Page: p.Number, Link: a.URI})
		}
	}
	return out
}
