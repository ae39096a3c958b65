// Package report renders a docket list for people rather than programs.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/agendalink/internal/docket"
	"github.com/yuin/goldmark"
)

// Markdown renders one section per agenda item followed by the links that
// matched nothing.
func Markdown(list *docket.DocketList) []byte {
	var b strings.Builder
	b.WriteString("# Agenda docket\n\n")

	for _, item := range list.Docket {
		fmt.Fprintf(&b, "## Item %s\n\n", item.ItemNumber)
		if text := strings.TrimSpace(item.RawText); text != "" {
			b.WriteString(escape(text))
			b.WriteString("\n\n")
		}
		if len(item.Attachments) > 0 {
			b.WriteString("Attachments:\n\n")
			writeLinks(&b, item.Attachments)
		}
	}

	if len(list.UnmatchedLinks) > 0 {
		b.WriteString("## Unmatched links\n\n")
		writeLinks(&b, list.UnmatchedLinks)
	}
	return []byte(b.String())
}

// HTML converts the Markdown report to an HTML fragment.
func HTML(list *docket.DocketList) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert(Markdown(list), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func writeLinks(b *strings.Builder, links []docket.Link) {
	for _, l := range links {
		title := "untitled"
		if l.HasTitle() && strings.TrimSpace(*l.Title) != "" {
			title = escape(*l.Title)
		}
		fmt.Fprintf(b, "- [%s](<%s>) (page %d)\n", title, l.Link, l.Page)
	}
	b.WriteString("\n")
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, "#", `\#`,
)

func escape(s string) string {
	return mdEscaper.Replace(s)
}
