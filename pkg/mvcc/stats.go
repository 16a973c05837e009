package mvcc

import (
	"math"
	"sync"
	"time"

	"github.com/mnohosten/snapkv/pkg/concurrent"
)

// Stats is an advisory snapshot of Manager activity. It need not be
// internally consistent across a commit or GC boundary (per §4.3's
// "Statistics" note); callers should treat it as a point-in-time sample.
type Stats struct {
	Committed         uint64
	Aborted           uint64
	SuccessRate       float64 // committed / (committed + aborted), 0 if none
	LatencyMeanMS     float64
	LatencyMinMS      float64
	LatencyMaxMS      float64
	LiveTransactions  int
	GCRuns            uint64
	VersionsReclaimed uint64
}

// statsTracker accumulates running counters and a latency summary without
// retaining per-transaction history. The monotonic counters (committed,
// aborted, gcRuns, versionsReclaimed) never need to be read consistently
// with the latency summary — §4.3 calls statistics advisory — so they
// live in lock-free concurrent.Counters grounded on the teacher's
// pkg/concurrent, while only the latency summary's mean/min/max needs the
// mutex below.
type statsTracker struct {
	committed         *concurrent.Counter
	aborted           *concurrent.Counter
	gcRuns            *concurrent.Counter
	versionsReclaimed *concurrent.Counter

	mu sync.Mutex

	latencyCount uint64
	latencySumMS float64
	latencyMinMS float64
	latencyMaxMS float64
}

func newStatsTracker() *statsTracker {
	return &statsTracker{
		committed:         concurrent.NewCounter(),
		aborted:           concurrent.NewCounter(),
		gcRuns:            concurrent.NewCounter(),
		versionsReclaimed: concurrent.NewCounter(),
	}
}

func (s *statsTracker) recordCommit(latency time.Duration) {
	s.committed.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observeLatency(latency)
}

func (s *statsTracker) recordAbort(latency time.Duration) {
	s.aborted.Inc()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observeLatency(latency)
}

func (s *statsTracker) recordGC(discarded int) {
	s.gcRuns.Inc()
	s.versionsReclaimed.Add(uint64(discarded))
}

// observeLatency must be called with s.mu held.
func (s *statsTracker) observeLatency(latency time.Duration) {
	ms := float64(latency) / float64(time.Millisecond)

	if s.latencyCount == 0 {
		s.latencyMinMS = ms
		s.latencyMaxMS = ms
	} else {
		s.latencyMinMS = math.Min(s.latencyMinMS, ms)
		s.latencyMaxMS = math.Max(s.latencyMaxMS, ms)
	}
	s.latencySumMS += ms
	s.latencyCount++
}

func (s *statsTracker) snapshot(live int) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mean float64
	if s.latencyCount > 0 {
		mean = s.latencySumMS / float64(s.latencyCount)
	}

	committed := s.committed.Load()
	aborted := s.aborted.Load()

	var successRate float64
	if total := committed + aborted; total > 0 {
		successRate = float64(committed) / float64(total)
	}

	return Stats{
		Committed:         committed,
		Aborted:           aborted,
		SuccessRate:       successRate,
		LatencyMeanMS:     mean,
		LatencyMinMS:      s.latencyMinMS,
		LatencyMaxMS:      s.latencyMaxMS,
		LiveTransactions:  live,
		GCRuns:            s.gcRuns.Load(),
		VersionsReclaimed: s.versionsReclaimed.Load(),
	}
}
