package netprov

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingCallback struct {
	mu          sync.Mutex
	available   []Network
	unavailable int
	events      chan struct{}
	onAvailable func(Network)
}

func newRecordingCallback() *recordingCallback {
	return &recordingCallback{events: make(chan struct{}, 4)}
}

func (c *recordingCallback) OnAvailable(n Network) {
	c.mu.Lock()
	c.available = append(c.available, n)
	hook := c.onAvailable
	c.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	c.events <- struct{}{}
}

func (c *recordingCallback) OnUnavailable() {
	c.mu.Lock()
	c.unavailable++
	c.mu.Unlock()
	c.events <- struct{}{}
}

func (c *recordingCallback) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.events:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for network callback")
	}
}

func stat(index int, name string, flags []string, addrs ...string) psnet.InterfaceStat {
	s := psnet.InterfaceStat{Index: index, Name: name, Flags: flags}
	for _, a := range addrs {
		s.Addrs = append(s.Addrs, psnet.InterfaceAddr{Addr: a})
	}
	return s
}

func staticLister(stats ...psnet.InterfaceStat) func() (psnet.InterfaceStatList, error) {
	return func() (psnet.InterfaceStatList, error) {
		return append(psnet.InterfaceStatList(nil), stats...), nil
	}
}

func newTestManager(opts ...Option) *Manager {
	opts = append([]Option{WithPollInterval(5 * time.Millisecond)}, opts...)
	return NewManager(zap.NewNop(), opts...)
}

func cellularRequest() Request {
	return Request{Transport: TransportCellular, Capabilities: []Capability{CapabilityInternet}}
}

func TestRequestNetworkDeliversMatchingInterface(t *testing.T) {
	m := newTestManager(WithInterfaceLister(staticLister(
		stat(1, "lo", []string{"up", "loopback"}, "127.0.0.1/8"),
		stat(2, "eth0", []string{"up", "broadcast"}, "192.168.1.10/24"),
		stat(4, "rmnet_data1", []string{"up"}, "10.20.30.40/30"),
		stat(3, "rmnet_data0", []string{"up"}, "fe80::1/64"),
	)))
	defer m.Close()

	cb := newRecordingCallback()
	require.NoError(t, m.RequestNetwork(context.Background(), cellularRequest(), cb))
	cb.wait(t)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	require.Len(t, cb.available, 1)
	assert.Equal(t, "rmnet_data1", cb.available[0].Name())
	assert.Equal(t, TransportCellular, cb.available[0].Transport())
	assert.Zero(t, cb.unavailable)
}

func TestRequestNetworkWaitsForInterfaceToComeUp(t *testing.T) {
	var calls atomic.Int32
	lister := func() (psnet.InterfaceStatList, error) {
		if calls.Add(1) < 3 {
			return psnet.InterfaceStatList{stat(2, "wwan0", []string{"broadcast"}, "10.0.0.2/24")}, nil
		}
		return psnet.InterfaceStatList{stat(2, "wwan0", []string{"up"}, "10.0.0.2/24")}, nil
	}
	m := newTestManager(WithInterfaceLister(lister))
	defer m.Close()

	cb := newRecordingCallback()
	require.NoError(t, m.RequestNetwork(context.Background(), cellularRequest(), cb))
	cb.wait(t)

	assert.GreaterOrEqual(t, calls.Load(), int32(3))
	cb.mu.Lock()
	defer cb.mu.Unlock()
	require.Len(t, cb.available, 1)
	assert.Equal(t, "wwan0", cb.available[0].Name())
}

func TestRequestNetworkTimesOut(t *testing.T) {
	m := newTestManager(WithInterfaceLister(staticLister(
		stat(2, "eth0", []string{"up"}, "192.168.1.10/24"),
	)))
	defer m.Close()

	cb := newRecordingCallback()
	req := cellularRequest()
	req.Timeout = 30 * time.Millisecond
	require.NoError(t, m.RequestNetwork(context.Background(), req, cb))
	cb.wait(t)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	assert.Empty(t, cb.available)
	assert.Equal(t, 1, cb.unavailable)
}

func TestRequestNetworkListerErrorKeepsPolling(t *testing.T) {
	var calls atomic.Int32
	lister := func() (psnet.InterfaceStatList, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("netlink busy")
		}
		return psnet.InterfaceStatList{stat(2, "eth0", []string{"up"}, "192.168.1.10/24")}, nil
	}
	m := newTestManager(WithInterfaceLister(lister))
	defer m.Close()

	cb := newRecordingCallback()
	req := Request{Transport: TransportEthernet, Capabilities: []Capability{CapabilityInternet}}
	require.NoError(t, m.RequestNetwork(context.Background(), req, cb))
	cb.wait(t)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	require.Len(t, cb.available, 1)
}

func TestUnregisterInsideCallbackDoesNotDeadlock(t *testing.T) {
	m := newTestManager(WithInterfaceLister(staticLister(
		stat(2, "wlan0", []string{"up"}, "192.168.1.10/24"),
	)))
	defer m.Close()

	cb := newRecordingCallback()
	cb.onAvailable = func(Network) { m.UnregisterNetworkCallback(cb) }

	req := Request{Transport: TransportWiFi, Capabilities: []Capability{CapabilityInternet}}
	require.NoError(t, m.RequestNetwork(context.Background(), req, cb))
	cb.wait(t)

	assert.False(t, m.registered(cb))
	m.UnregisterNetworkCallback(cb)
}

func TestUnregisterBeforeAvailableSuppressesCallbacks(t *testing.T) {
	m := newTestManager(WithInterfaceLister(staticLister()))

	cb := newRecordingCallback()
	require.NoError(t, m.RequestNetwork(context.Background(), cellularRequest(), cb))
	m.UnregisterNetworkCallback(cb)
	m.Close()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	assert.Empty(t, cb.available)
	assert.Zero(t, cb.unavailable)
}

func TestRequestNetworkRejectsDuplicateAndNil(t *testing.T) {
	m := newTestManager(WithInterfaceLister(staticLister()))
	defer m.Close()

	assert.ErrorIs(t, m.RequestNetwork(context.Background(), cellularRequest(), nil), ErrNilCallback)

	cb := newRecordingCallback()
	require.NoError(t, m.RequestNetwork(context.Background(), cellularRequest(), cb))
	assert.ErrorIs(t, m.RequestNetwork(context.Background(), cellularRequest(), cb), ErrAlreadyRegistered)
}

func TestContextCancelDeliversUnavailable(t *testing.T) {
	m := newTestManager(WithInterfaceLister(staticLister()))
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cb := newRecordingCallback()
	require.NoError(t, m.RequestNetwork(ctx, cellularRequest(), cb))
	cancel()
	cb.wait(t)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	assert.Equal(t, 1, cb.unavailable)
}

func TestBindProcessToNetwork(t *testing.T) {
	m := newTestManager()
	defer m.Close()
	defer m.BindProcessToNetwork(nil)

	iface := newInterface(stat(2, "rmnet0", []string{"up"}, "10.0.0.2/24"), TransportCellular)
	require.NoError(t, m.BindProcessToNetwork(iface))
	assert.Same(t, iface, ProcessNetwork())

	require.NoError(t, m.BindProcessToNetwork(nil))
	assert.Nil(t, ProcessNetwork())
}

func TestDefaultDialerFollowsProcessBinding(t *testing.T) {
	m := newTestManager()
	defer m.Close()
	defer m.BindProcessToNetwork(nil)

	unbound := DefaultDialer(5 * time.Second)
	assert.Equal(t, 5*time.Second, unbound.Timeout)
	assert.Nil(t, unbound.Resolver)
	assert.Nil(t, unbound.Control)
	assert.Nil(t, unbound.LocalAddr)

	iface := newInterface(stat(2, "rmnet0", []string{"up"}, "10.0.0.2/24"), TransportCellular)
	require.NoError(t, m.BindProcessToNetwork(iface))

	bound := DefaultDialer(5 * time.Second)
	assert.Equal(t, 5*time.Second, bound.Timeout)
	require.NotNil(t, bound.Resolver)
	assert.True(t, bound.Resolver.PreferGo)
	assert.NotNil(t, bound.Resolver.Dial)
	assert.True(t, bound.Control != nil || bound.LocalAddr != nil)

	require.NoError(t, m.BindProcessToNetwork(nil))
	assert.Nil(t, DefaultDialer(time.Second).Resolver)
}

func TestParseTransport(t *testing.T) {
	tests := []struct {
		in      string
		want    Transport
		wantErr bool
	}{
		{"cellular", TransportCellular, false},
		{"Mobile", TransportCellular, false},
		{"wifi", TransportWiFi, false},
		{"ethernet", TransportEthernet, false},
		{"", TransportAny, false},
		{"bluetooth", TransportAny, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTransport(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownTransport)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Transport {
	t.Helper()
	tr, err := ParseTransport(s)
	require.NoError(t, err)
	return tr
}

func TestClassify(t *testing.T) {
	assert.Equal(t, TransportCellular, classify("rmnet_data0"))
	assert.Equal(t, TransportCellular, classify("wwan0"))
	assert.Equal(t, TransportWiFi, classify("wlan0"))
	assert.Equal(t, TransportWiFi, classify("wlp3s0"))
	assert.Equal(t, TransportEthernet, classify("enp0s31f6"))
	assert.Equal(t, TransportAny, classify("docker0"))
}
