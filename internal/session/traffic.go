package session

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fgharness/internal/netprov"
)

// generateNetworkTraffic requests a network of the given transport and runs
// the exerciser over it once it becomes available.
func (s *Session) generateNetworkTraffic(ctx context.Context, transport netprov.Transport) {
	cb := &trafficCallback{session: s, ctx: ctx}
	req := netprov.Request{
		Transport:    transport,
		Capabilities: []netprov.Capability{netprov.CapabilityInternet},
		Timeout:      s.cfg.NetworkTimeout,
	}
	if err := s.deps.Provisioner.RequestNetwork(ctx, req, cb); err != nil {
		s.log.Error("request network", zap.Stringer("transport", transport), zap.Error(err))
		s.finish(err)
	}
}

type trafficCallback struct {
	session *Session
	ctx     context.Context
}

// OnAvailable runs the whole exercise on the dispatch goroutine, then
// releases the network and finishes the session, on every path.
func (c *trafficCallback) OnAvailable(n netprov.Network) {
	s := c.session
	start := time.Now()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("exercise panicked: %v", r)
			s.log.Error("exerciseRemoteHost failed",
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Error(err))
		}
		s.deps.Provisioner.UnregisterNetworkCallback(c)
		s.finish(err)
	}()

	var elapsed time.Duration
	elapsed, err = s.deps.Clock.Elapsed()
	if err != nil {
		s.log.Error("read uptime", zap.Error(err))
		return
	}

	rep, err := s.deps.Exerciser.Exercise(c.ctx, n, elapsed)
	s.mu.Lock()
	s.report = &rep
	s.mu.Unlock()
	if s.deps.Recorder != nil && rep.Planned > 0 {
		s.deps.Recorder.ObserveIterations(rep.Planned)
	}
	if err != nil {
		s.log.Error("exerciseRemoteHost failed",
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int64("uptime_s", int64(elapsed/time.Second)),
			zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int("iterations", rep.Completed),
		zap.Int64("uptime_s", int64(elapsed/time.Second)),
		zap.String("network", n.Name()),
	}
	if rep.Counters != nil {
		fields = append(fields,
			zap.Uint64("rx_packets", rep.Counters.PacketsRecv),
			zap.Uint64("tx_packets", rep.Counters.PacketsSent))
	}
	s.log.Info("exerciseRemoteHost successful", fields...)
}

func (c *trafficCallback) OnUnavailable() {
	s := c.session
	s.log.Error("no network available", zap.Stringer("transport", s.cfg.Transport))
	s.deps.Provisioner.UnregisterNetworkCallback(c)
	s.finish(ErrNetworkUnavailable)
}
