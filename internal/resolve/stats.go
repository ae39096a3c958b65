package resolve

import (
	"context"
	"errors"
	"math"
	"slices"
	"sort"
	"sync"
	"time"
)

// Outcome classifies a finished metadata request.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeBadStatus Outcome = "bad_status"
	OutcomeNetwork   Outcome = "network"
	OutcomeNoTitle   Outcome = "no_title"
)

// Classify maps a Result to its Outcome.
func Classify(res Result) Outcome {
	if res.OK {
		return OutcomeOK
	}
	var statusErr *StatusError
	var timeoutErr interface{ Timeout() bool }
	switch {
	case errors.As(res.Err, &statusErr):
		return OutcomeBadStatus
	case errors.Is(res.Err, ErrNoTitle):
		return OutcomeNoTitle
	case errors.Is(res.Err, context.DeadlineExceeded),
		errors.As(res.Err, &timeoutErr) && timeoutErr.Timeout():
		return OutcomeTimeout
	default:
		return OutcomeNetwork
	}
}

type sample struct {
	at      time.Time
	elapsed time.Duration
	outcome Outcome
}

// StatsSnapshot aggregates the requests still inside the window.
// Percentiles use the nearest-rank method, so each is an observed latency.
type StatsSnapshot struct {
	Count    int             `json:"count"`
	Outcomes map[Outcome]int `json:"outcomes"`
	MinMs    int64           `json:"min_ms"`
	MaxMs    int64           `json:"max_ms"`
	MeanMs   float64         `json:"mean_ms"`
	P50Ms    int64           `json:"p50_ms"`
	P90Ms    int64           `json:"p90_ms"`
	P99Ms    int64           `json:"p99_ms"`
}

// Stats keeps metadata request latencies for the last window, holding at
// most limit samples. Samples are appended in time order, so expired and
// overflowing ones are always a prefix.
type Stats struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	samples []sample
}

func NewStats(window time.Duration, limit int) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	if limit <= 0 {
		limit = 4096
	}
	return &Stats{window: window, limit: limit}
}

func (s *Stats) Record(elapsed time.Duration, outcome Outcome) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = append(s.samples, sample{at: now, elapsed: max(elapsed, 0), outcome: outcome})
	s.trimLocked(now)
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.trimLocked(time.Now())
	samples := slices.Clone(s.samples)
	s.mu.Unlock()

	snap := StatsSnapshot{Count: len(samples), Outcomes: map[Outcome]int{}}
	if len(samples) == 0 {
		return snap
	}

	ms := make([]int64, len(samples))
	var total int64
	for i, sm := range samples {
		ms[i] = sm.elapsed.Milliseconds()
		total += ms[i]
		snap.Outcomes[sm.outcome]++
	}
	slices.Sort(ms)

	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.MeanMs = float64(total) / float64(len(ms))
	snap.P50Ms = nearestRank(ms, 50)
	snap.P90Ms = nearestRank(ms, 90)
	snap.P99Ms = nearestRank(ms, 99)
	return snap
}

// trimLocked drops samples older than the window, then the oldest beyond limit.
func (s *Stats) trimLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	drop := sort.Search(len(s.samples), func(i int) bool {
		return !s.samples[i].at.Before(cutoff)
	})
	if over := len(s.samples) - drop - s.limit; over > 0 {
		drop += over
	}
	if drop > 0 {
		s.samples = slices.Delete(s.samples, 0, drop)
	}
}

// nearestRank returns the smallest value with at least pct percent of the
// sorted values at or below it.
func nearestRank(sorted []int64, pct float64) int64 {
	rank := int(math.Ceil(pct / 100 * float64(len(sorted))))
	return sorted[min(max(rank, 1), len(sorted))-1]
}
