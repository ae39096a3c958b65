package pipeline

import (
	"log/slog"

	"github.com/dgallion1/agendalink/internal/agenda"
	"github.com/dgallion1/agendalink/internal/artifact"
	"github.com/dgallion1/agendalink/internal/config"
	"github.com/dgallion1/agendalink/internal/match"
	"github.com/dgallion1/agendalink/internal/parser"
	"github.com/dgallion1/agendalink/internal/resolve"
)

// FromConfig wires the default components. The resolver is returned so
// callers can reach its stats and cache.
func FromConfig(cfg config.Config, log *slog.Logger) (*Pipeline, *resolve.Resolver) {
	reader := &parser.PDFReader{
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
		FallbackPDFCPU:    cfg.PDFFallbackPDFCPU,
	}
	res := resolve.New(resolve.Config{
		Concurrency: cfg.ResolveConcurrency,
		Timeout:     cfg.ResolveTimeout,
		UserAgent:   cfg.UserAgent,
		CacheTTL:    cfg.TitleCacheTTL,
	}, nil, log)
	p := New(reader, agenda.NumberedSegmenter{}, res, match.New(), artifact.New(cfg.ArtifactDir), log)
	return p, res
}
