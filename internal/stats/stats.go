package stats

import (
	"sync/atomic"
	"time"
)

// Stats aggregates the outcome of exercise requests.
type Stats struct {
	Requests uint64
	Success  uint64
	Fail     uint64
	Bytes    uint64

	// Time from dial to drained response.
	Latency *SafeHistogram
}

func NewStats() *Stats {
	return &Stats{
		Latency: NewSafeHistogram(),
	}
}

// ObserveRequest records one request. Failed requests count toward Fail but
// not toward the latency histogram.
func (s *Stats) ObserveRequest(d time.Duration, bytes int64, err error) {
	atomic.AddUint64(&s.Requests, 1)
	if err != nil {
		atomic.AddUint64(&s.Fail, 1)
		return
	}
	atomic.AddUint64(&s.Success, 1)
	if bytes > 0 {
		atomic.AddUint64(&s.Bytes, uint64(bytes))
	}
	s.Latency.Record(d)
}

// Snapshot is a point-in-time copy suitable for display.
type Snapshot struct {
	Requests uint64
	Success  uint64
	Fail     uint64
	Bytes    uint64

	P50 time.Duration
	P90 time.Duration
	P99 time.Duration
	Max time.Duration
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Requests: atomic.LoadUint64(&s.Requests),
		Success:  atomic.LoadUint64(&s.Success),
		Fail:     atomic.LoadUint64(&s.Fail),
		Bytes:    atomic.LoadUint64(&s.Bytes),
		P50:      s.Latency.Quantile(50),
		P90:      s.Latency.Quantile(90),
		P99:      s.Latency.Quantile(99),
		Max:      s.Latency.Max(),
	}
}

func (s *Stats) ErrorRate() float64 {
	reqs := atomic.LoadUint64(&s.Requests)
	if reqs == 0 {
		return 0
	}
	fails := atomic.LoadUint64(&s.Fail)
	return (float64(fails) / float64(reqs)) * 100
}
