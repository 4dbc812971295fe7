// Package exerciser generates a bounded amount of HTTP traffic over a chosen
// network so that uptime-scaled traffic accounting reports non-zero usage.
package exerciser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"fgharness/internal/netprov"
)

// Binder sets the process default network.
type Binder interface {
	BindProcessToNetwork(n netprov.Network) error
}

// Observer is told about every request, successful or not.
type Observer interface {
	ObserveRequest(d time.Duration, bytes int64, err error)
}

type Option func(*Exerciser)

func WithObserver(o Observer) Option {
	return func(e *Exerciser) { e.observers = append(e.observers, o) }
}

// WithUpdates publishes progress on ch. Sends never block; updates are
// dropped while ch is full.
func WithUpdates(ch UpdateChan) Option {
	return func(e *Exerciser) { e.updates = ch }
}

type Exerciser struct {
	cfg       Config
	binder    Binder
	log       *zap.Logger
	observers []Observer
	updates   UpdateChan
}

func New(cfg Config, binder Binder, log *zap.Logger, opts ...Option) (*Exerciser, error) {
	if err := cfg.Sizing.Validate(); err != nil {
		return nil, err
	}
	u, err := url.Parse(cfg.TargetURL)
	if err != nil {
		return nil, fmt.Errorf("%w: target url: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: target url scheme %q", ErrInvalidConfig, u.Scheme)
	}
	if cfg.ConnectTimeout <= 0 {
		return nil, fmt.Errorf("%w: connect timeout %s", ErrInvalidConfig, cfg.ConnectTimeout)
	}

	e := &Exerciser{
		cfg:    cfg,
		binder: binder,
		log:    log.Named("exerciser"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Exercise sizes the run from elapsed and then issues that many requests to
// the target, strictly one after another on the calling goroutine. The
// process is bound to network before each request, so connections and name
// lookups leave over it. The first failing request aborts the run.
//
// Exercise blocks for the whole run. Callers invoking it from a network
// callback hold up further dispatch until it returns.
func (e *Exerciser) Exercise(ctx context.Context, network netprov.Network, elapsed time.Duration) (Report, error) {
	start := time.Now()
	rep := Report{Network: network.Name(), Uptime: elapsed}

	iterations, err := e.cfg.Sizing.Iterations(elapsed)
	if err != nil {
		return rep, err
	}
	rep.Planned = iterations

	counters, _ := network.(netprov.CounterSource)
	var before netprov.Counters
	if counters != nil {
		if before, err = counters.Counters(); err != nil {
			e.log.Debug("interface counters unavailable", zap.Error(err))
			counters = nil
		}
	}

	for i := 0; i < iterations; i++ {
		res := e.exerciseRemoteHost(ctx, network)
		e.observe(res)
		if res.err != nil {
			rep.Duration = time.Since(start)
			reqErr := &RequestError{Iteration: i, Elapsed: rep.Duration, Err: res.err}
			e.publish(Progress{Planned: iterations, Completed: rep.Completed, LastLatency: res.latency, Bytes: rep.BytesReceived, Err: reqErr, Done: true})
			return rep, reqErr
		}

		rep.Completed++
		rep.BytesReceived += res.bytes
		rep.Latencies = append(rep.Latencies, res.latency)
		rep.Statuses = append(rep.Statuses, res.status)
		e.publish(Progress{
			Planned:     iterations,
			Completed:   rep.Completed,
			LastLatency: res.latency,
			Bytes:       rep.BytesReceived,
			Done:        rep.Completed == iterations,
		})
	}

	if counters != nil {
		if after, err := counters.Counters(); err == nil {
			delta := after.Sub(before)
			rep.Counters = &delta
		}
	}
	rep.Duration = time.Since(start)
	return rep, nil
}

type requestResult struct {
	status  int
	bytes   int64
	latency time.Duration
	err     error
}

// exerciseRemoteHost binds the process to network, then makes one request on
// a fresh connection through the process default dialer and closes it before
// returning, on every path.
func (e *Exerciser) exerciseRemoteHost(ctx context.Context, network netprov.Network) requestResult {
	if err := e.binder.BindProcessToNetwork(network); err != nil {
		return requestResult{err: fmt.Errorf("bind process to %s: %w", network.Name(), err)}
	}

	transport := &http.Transport{
		DialContext:         netprov.DefaultDialer(e.cfg.ConnectTimeout).DialContext,
		TLSHandshakeTimeout: e.cfg.ConnectTimeout,
		DisableKeepAlives:   true,
	}
	if e.cfg.TLSConfig != nil {
		transport.TLSClientConfig = e.cfg.TLSConfig.Clone()
	}
	defer transport.CloseIdleConnections()
	client := &http.Client{Transport: transport}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.TargetURL, nil)
	if err != nil {
		return requestResult{err: err}
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return requestResult{latency: time.Since(start), err: err}
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	res := requestResult{status: resp.StatusCode, bytes: n, latency: time.Since(start), err: err}
	e.log.Debug("exercised remote host",
		zap.String("network", network.Name()),
		zap.Int("status", res.status),
		zap.Duration("latency", res.latency))
	return res
}

func (e *Exerciser) observe(res requestResult) {
	for _, o := range e.observers {
		o.ObserveRequest(res.latency, res.bytes, res.err)
	}
}

func (e *Exerciser) publish(p Progress) {
	if e.updates == nil {
		return
	}
	select {
	case e.updates <- p:
	default:
	}
}
