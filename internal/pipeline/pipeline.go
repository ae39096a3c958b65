package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/agendalink/internal/agenda"
	"github.com/dgallion1/agendalink/internal/artifact"
	"github.com/dgallion1/agendalink/internal/docket"
	"github.com/dgallion1/agendalink/internal/links"
	"github.com/dgallion1/agendalink/internal/match"
	"github.com/dgallion1/agendalink/internal/parser"
	"github.com/dgallion1/agendalink/internal/resolve"
)

// Pipeline turns an agenda PDF into resolved links or a matched docket.
type Pipeline struct {
	reader    parser.Reader
	segmenter agenda.Segmenter
	resolver  *resolve.Resolver
	matcher   *match.Matcher
	sink      artifact.Sink
	log       *slog.Logger
}

func New(reader parser.Reader, segmenter agenda.Segmenter, resolver *resolve.Resolver, matcher *match.Matcher, sink artifact.Sink, log *slog.Logger) *Pipeline {
	if sink == nil {
		sink = artifact.Nop{}
	}
	return &Pipeline{
		reader:    reader,
		segmenter: segmenter,
		resolver:  resolver,
		matcher:   matcher,
		sink:      sink,
		log:       log,
	}
}

// Links reads the PDF at path and returns its attachment links with titles
// resolved. The result is never nil.
func (p *Pipeline) Links(ctx context.Context, path string) ([]docket.Link, error) {
	runID := artifact.RunID(ctx)
	log := p.log.With("run_id", runID)

	doc, err := p.read(log, path)
	if err != nil {
		return nil, err
	}
	all := p.collect(ctx, log, doc)
	p.putJSON(log, runID, artifact.AllLinks, all)
	return all, nil
}

// Docket reads the PDF at path, segments its agenda region into items and
// assigns every resolved link to an item or to the unmatched list.
func (p *Pipeline) Docket(ctx context.Context, path string) (*docket.DocketList, error) {
	runID := artifact.RunID(ctx)
	log := p.log.With("run_id", runID)

	doc, err := p.read(log, path)
	if err != nil {
		return nil, err
	}

	// Phase 1: bound and segment the agenda text.
	region := agenda.ExtractRegion(doc.Pages)
	p.put(log, runID, artifact.CombinedText, []byte(region.Combined))

	items := p.segmenter.Segment(region.Text)
	if items == nil {
		items = []docket.AgendaItem{}
	}
	log.Info("segmented agenda",
		"region_start", region.Start,
		"region_end", region.End,
		"items", len(items),
	)

	// Phase 2: collect and resolve attachment links.
	all := p.collect(ctx, log, doc)
	p.putJSON(log, runID, artifact.AllLinks, all)

	// Phase 3: match links to items.
	list := &docket.DocketList{Docket: items, UnmatchedLinks: []docket.Link{}}
	sum := p.matcher.Match(list, all)
	log.Info("matched attachments", "matched", sum.Matched, "unmatched", sum.Unmatched)

	p.putJSON(log, runID, artifact.FinalDocketList, list)
	return list, nil
}

func (p *Pipeline) read(log *slog.Logger, path string) (*parser.Document, error) {
	start := time.Now()
	doc, err := p.reader.Read(path)
	if err != nil {
		log.Error("read failed", "error", err)
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	hash, err := FileHashHex(path)
	if err != nil {
		log.Warn("hash failed", "error", err)
	}
	log.Info("read document",
		"pages", len(doc.Pages),
		"content_hash", hash,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

func (p *Pipeline) collect(ctx context.Context, log *slog.Logger, doc *parser.Document) []docket.Link {
	all := links.Collect(doc.Pages)
	if all == nil {
		all = []docket.Link{}
	}
	log.Info("collected links", "links", len(all))

	start := time.Now()
	results := p.resolver.Resolve(ctx, all)
	resolved := 0
	for _, r := range results {
		if r.OK {
			resolved++
		}
	}
	log.Info("resolved titles",
		"resolved", resolved,
		"failed", len(results)-resolved,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return all
}

func (p *Pipeline) putJSON(log *slog.Logger, runID, name string, v any) {
	if err := artifact.PutJSON(p.sink, runID, name, v); err != nil {
		log.Warn("artifact write failed", "name", name, "error", err)
	}
}

func (p *Pipeline) put(log *slog.Logger, runID, name string, data []byte) {
	if err := p.sink.Put(runID, name, data); err != nil {
		log.Warn("artifact write failed", "name", name, "error", err)
	}
}
