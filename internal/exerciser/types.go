package exerciser

import (
	"crypto/tls"
	"time"

	"fgharness/internal/netprov"
)

const (
	DefaultTargetURL      = "https://connectivitycheck.gstatic.com/generate_204"
	DefaultConnectTimeout = 15 * time.Second
)

type Config struct {
	TargetURL      string
	ConnectTimeout time.Duration
	Sizing         Sizing

	// TLSConfig is cloned for every request. Nil uses the system roots.
	TLSConfig *tls.Config
}

func DefaultConfig() Config {
	return Config{
		TargetURL:      DefaultTargetURL,
		ConnectTimeout: DefaultConnectTimeout,
		Sizing:         DefaultSizing(),
	}
}

// Report describes one Exercise call, complete or not.
type Report struct {
	Network   string
	Uptime    time.Duration
	Planned   int
	Completed int
	Duration  time.Duration

	BytesReceived int64
	Latencies     []time.Duration
	Statuses      []int

	// Counters holds interface counter deltas when the network exposes them.
	Counters *netprov.Counters
}

// Progress is published after every request.
type Progress struct {
	Planned     int
	Completed   int
	LastLatency time.Duration
	Bytes       int64
	Err         error
	Done        bool
}

type UpdateChan chan Progress
