package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/dgallion1/agendalink/internal/docket"
	"golang.org/x/net/publicsuffix"
)

// HTTPClient is the subset of *http.Client the resolver needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Source says where a title came from.
type Source string

const (
	SourceContentDisposition Source = "content-disposition"
	SourceURL                Source = "url"
	SourceCache              Source = "cache"
)

// ErrNoTitle means the response succeeded but neither the headers nor the
// URL yielded a title.
var ErrNoTitle = errors.New("no filename in headers or url")

// StatusError is a non-200 response to a metadata request.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Result is the outcome of resolving one link. Exactly one of Title (with
// OK set) or Err is meaningful.
type Result struct {
	URL        string
	Title      string
	OK         bool
	Source     Source
	StatusCode int
	Err        error
	Duration   time.Duration
}

// Config controls title resolution.
type Config struct {
	Concurrency int           // Max in-flight requests
	Timeout     time.Duration // Per-link budget, redirects included
	UserAgent   string
	CacheTTL    time.Duration // 0 disables the title cache
}

// Resolver looks up display titles for attachment links with HEAD requests.
type Resolver struct {
	cfg    Config
	client HTTPClient
	cache  *TitleCache
	log    *slog.Logger

	Stats *Stats
}

// New creates a resolver. With a nil client each Resolve call builds its own
// *http.Client with a fresh cookie jar.
func New(cfg Config, client HTTPClient, log *slog.Logger) *Resolver {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	r := &Resolver{
		cfg:    cfg,
		client: client,
		log:    log,
		Stats:  NewStats(time.Hour, 4096),
	}
	if cfg.CacheTTL > 0 {
		r.cache = NewTitleCache(cfg.CacheTTL)
	}
	return r
}

// Resolve sets Title on every link, in place, and returns one Result per
// link in input order. Failures leave Title nil and never abort the others.
func (r *Resolver) Resolve(ctx context.Context, links []docket.Link) []Result {
	results := make([]Result, len(links))
	if len(links) == 0 {
		return results
	}
	client := r.httpClient()

	sem := make(chan struct{}, r.cfg.Concurrency)
	var wg sync.WaitGroup
	for i := range links {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, rawURL string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.resolveOne(ctx, client, rawURL)
		}(i, links[i].Link)
	}
	wg.Wait()

	for i := range links {
		if results[i].OK {
			links[i].Title = docket.StringPtr(results[i].Title)
		} else {
			links[i].Title = nil
		}
	}
	return results
}

func (r *Resolver) resolveOne(ctx context.Context, client HTTPClient, rawURL string) Result {
	if r.cache != nil {
		if title, ok := r.cache.Get(rawURL); ok {
			return Result{URL: rawURL, Title: title, OK: true, Source: SourceCache}
		}
	}

	start := time.Now()
	res := r.fetch(ctx, client, rawURL)
	res.Duration = time.Since(start)
	r.Stats.Record(res.Duration, Classify(res))

	if !res.OK {
		r.log.Debug("title resolution failed", "url", rawURL, "status", res.StatusCode, "error", res.Err)
		return res
	}
	if r.cache != nil {
		r.cache.Set(rawURL, res.Title)
	}
	return res
}

func (r *Resolver) fetch(ctx context.Context, client HTTPClient, rawURL string) Result {
	res := Result{URL: rawURL}

	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("create request: %w", err)
		return res
	}
	if r.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", r.cfg.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("head: %w", err)
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		res.Err = &StatusError{Code: resp.StatusCode}
		return res
	}

	if title, ok := TitleFromContentDisposition(resp.Header.Get("Content-Disposition")); ok {
		res.Title, res.OK, res.Source = title, true, SourceContentDisposition
		return res
	}
	if title, ok := TitleFromURL(rawURL); ok {
		res.Title, res.OK, res.Source = title, true, SourceURL
		return res
	}
	res.Err = ErrNoTitle
	return res
}

func (r *Resolver) httpClient() HTTPClient {
	if r.client != nil {
		return r.client
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return &http.Client{}
	}
	return &http.Client{Jar: jar}
}

// StartCacheCleanup evicts expired cache entries every interval until ctx
// is done. It is a no-op when caching is disabled.
func (r *Resolver) StartCacheCleanup(ctx context.Context, interval time.Duration) {
	if r.cache == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.cache.Cleanup(); n > 0 {
					r.log.Debug("evicted cached titles", "count", n)
				}
			}
		}
	}()
}
