package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// SafeHistogram is a thread-safe wrapper around hdrhistogram
type SafeHistogram struct {
	hist *hdrhistogram.Histogram
	mu   sync.Mutex
}

func NewSafeHistogram() *SafeHistogram {
	// 1us to 1min, 3 significant figures. Requests are bounded by the connect
	// timeout long before that.
	h := hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)
	return &SafeHistogram{hist: h}
}

// Record records a duration with microsecond resolution. Values outside the
// trackable range are clamped.
func (h *SafeHistogram) Record(d time.Duration) {
	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if max := h.hist.HighestTrackableValue(); us > max {
		us = max
	}
	h.hist.RecordValue(us)
}

// Quantile returns the duration at quantile q (0-100).
func (h *SafeHistogram) Quantile(q float64) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return time.Duration(h.hist.ValueAtQuantile(q)) * time.Microsecond
}

func (h *SafeHistogram) Mean() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return time.Duration(h.hist.Mean() * float64(time.Microsecond))
}

func (h *SafeHistogram) Max() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return time.Duration(h.hist.Max()) * time.Microsecond
}

func (h *SafeHistogram) TotalCount() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.TotalCount()
}
