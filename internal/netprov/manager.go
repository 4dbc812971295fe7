// Package netprov finds networks of a requested transport and hands them to
// callers through one-shot callbacks.
package netprov

import (
	"context"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"
)

const defaultPollInterval = 500 * time.Millisecond

type binding struct {
	network Network
}

var processNetwork atomic.Value // binding

// ProcessNetwork returns the network bound with BindProcessToNetwork, or nil.
func ProcessNetwork() Network {
	b, _ := processNetwork.Load().(binding)
	return b.network
}

// DefaultDialer returns a dialer for the process default network: the one
// bound with BindProcessToNetwork, or the system route when nothing is bound.
func DefaultDialer(timeout time.Duration) *net.Dialer {
	if n := ProcessNetwork(); n != nil {
		return n.Dialer(timeout)
	}
	return &net.Dialer{Timeout: timeout}
}

type Option func(*Manager)

// WithInterfaceLister replaces the OS interface listing.
func WithInterfaceLister(list func() (psnet.InterfaceStatList, error)) Option {
	return func(m *Manager) { m.list = list }
}

func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) { m.pollInterval = d }
}

// Manager watches OS interfaces and satisfies network requests.
type Manager struct {
	log          *zap.Logger
	list         func() (psnet.InterfaceStatList, error)
	pollInterval time.Duration

	mu        sync.Mutex
	callbacks map[Callback]context.CancelFunc
	wg        sync.WaitGroup
}

func NewManager(log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		log:          log.Named("netprov"),
		list:         psnet.Interfaces,
		pollInterval: defaultPollInterval,
		callbacks:    make(map[Callback]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RequestNetwork registers cb and starts looking for a network matching req.
// Exactly one of cb.OnAvailable or cb.OnUnavailable is delivered, on a
// dedicated dispatch goroutine, unless cb is unregistered first.
func (m *Manager) RequestNetwork(ctx context.Context, req Request, cb Callback) error {
	if cb == nil {
		return ErrNilCallback
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.callbacks[cb]; ok {
		return ErrAlreadyRegistered
	}

	var cancel context.CancelFunc
	if req.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	m.callbacks[cb] = cancel

	m.log.Debug("network requested",
		zap.Stringer("transport", req.Transport),
		zap.Duration("timeout", req.Timeout))

	m.wg.Add(1)
	go m.dispatch(ctx, req, cb)
	return nil
}

// UnregisterNetworkCallback stops dispatch for cb. It is idempotent and safe
// to call from inside the callback.
func (m *Manager) UnregisterNetworkCallback(cb Callback) {
	m.mu.Lock()
	cancel, ok := m.callbacks[cb]
	delete(m.callbacks, cb)
	m.mu.Unlock()

	if ok {
		cancel()
		m.log.Debug("network callback unregistered")
	}
}

// BindProcessToNetwork makes n the default network for the whole process;
// nil clears the binding. Dialers from DefaultDialer made afterwards connect
// and resolve names over n. The binding is process-global and unsynchronized
// with other users: anything else in the process that dials through
// DefaultDialer sees the change immediately.
func (m *Manager) BindProcessToNetwork(n Network) error {
	processNetwork.Store(binding{network: n})
	if n != nil {
		m.log.Debug("process bound to network", zap.String("network", n.Name()))
	}
	return nil
}

// Close unregisters every callback and waits for dispatch goroutines to exit.
// It must not be called from inside a callback.
func (m *Manager) Close() {
	m.mu.Lock()
	for cb, cancel := range m.callbacks {
		cancel()
		delete(m.callbacks, cb)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Manager) registered(cb Callback) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.callbacks[cb]
	return ok
}

func (m *Manager) dispatch(ctx context.Context, req Request, cb Callback) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		n, err := m.find(req)
		if err != nil {
			m.log.Warn("list interfaces", zap.Error(err))
		}
		if n != nil {
			if m.registered(cb) {
				m.log.Info("network available", zap.Stringer("network", n))
				cb.OnAvailable(n)
			}
			return
		}

		select {
		case <-ctx.Done():
			if m.registered(cb) {
				m.log.Info("network unavailable",
					zap.Stringer("transport", req.Transport),
					zap.Error(ctx.Err()))
				cb.OnUnavailable()
			}
			return
		case <-ticker.C:
		}
	}
}

// find returns the lowest-index interface that is up, not loopback, of the
// requested transport and holding the requested capabilities.
func (m *Manager) find(req Request) (*Interface, error) {
	stats, err := m.list()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Index < stats[j].Index })

	for _, stat := range stats {
		if !hasFlag(stat, "up") || hasFlag(stat, "loopback") {
			continue
		}
		transport := classify(stat.Name)
		if req.Transport != TransportAny && transport != req.Transport {
			continue
		}
		iface := newInterface(stat, transport)
		if req.has(CapabilityInternet) && !iface.routable() {
			continue
		}
		return iface, nil
	}
	return nil, nil
}
