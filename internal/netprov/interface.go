package netprov

import (
	"context"
	"fmt"
	"net"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// Interface is a Network backed by an OS network interface.
type Interface struct {
	name      string
	transport Transport
	addrs     []net.IP

	ioCounters func(pernic bool) ([]psnet.IOCountersStat, error)
}

func newInterface(stat psnet.InterfaceStat, transport Transport) *Interface {
	iface := &Interface{
		name:       stat.Name,
		transport:  transport,
		ioCounters: psnet.IOCounters,
	}
	for _, a := range stat.Addrs {
		ip, _, err := net.ParseCIDR(a.Addr)
		if err != nil {
			ip = net.ParseIP(a.Addr)
		}
		if ip != nil {
			iface.addrs = append(iface.addrs, ip)
		}
	}
	return iface
}

func (i *Interface) Name() string         { return i.name }
func (i *Interface) Transport() Transport { return i.transport }

func (i *Interface) String() string {
	return fmt.Sprintf("%s(%s)", i.name, i.transport)
}

// Addrs returns the interface's addresses.
func (i *Interface) Addrs() []net.IP {
	return append([]net.IP(nil), i.addrs...)
}

func (i *Interface) Dialer(timeout time.Duration) *net.Dialer {
	return bindDialer(&net.Dialer{Timeout: timeout}, i)
}

// Counters reads the interface's cumulative traffic counters.
func (i *Interface) Counters() (Counters, error) {
	stats, err := i.ioCounters(true)
	if err != nil {
		return Counters{}, fmt.Errorf("read counters for %s: %w", i.name, err)
	}
	for _, s := range stats {
		if s.Name == i.name {
			return Counters{
				PacketsSent: s.PacketsSent,
				PacketsRecv: s.PacketsRecv,
				BytesSent:   s.BytesSent,
				BytesRecv:   s.BytesRecv,
			}, nil
		}
	}
	return Counters{}, fmt.Errorf("%w: %s", ErrInterfaceNotFound, i.name)
}

// routable reports whether the interface holds a global unicast address.
func (i *Interface) routable() bool {
	for _, ip := range i.addrs {
		if ip.IsGlobalUnicast() {
			return true
		}
	}
	return false
}

// boundResolver resolves names with the pure Go resolver, sending queries
// through dial.
func boundResolver(dial func(ctx context.Context, network, address string) (net.Conn, error)) *net.Resolver {
	return &net.Resolver{PreferGo: true, Dial: dial}
}

func hasFlag(stat psnet.InterfaceStat, flag string) bool {
	for _, f := range stat.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
