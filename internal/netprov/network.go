package netprov

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

var (
	ErrUnknownTransport  = errors.New("unknown transport")
	ErrAlreadyRegistered = errors.New("callback already registered")
	ErrNilCallback       = errors.New("nil network callback")
	ErrInterfaceNotFound = errors.New("interface not found")
)

type Transport int

const (
	TransportAny Transport = iota
	TransportCellular
	TransportWiFi
	TransportEthernet
)

func (t Transport) String() string {
	switch t {
	case TransportCellular:
		return "cellular"
	case TransportWiFi:
		return "wifi"
	case TransportEthernet:
		return "ethernet"
	default:
		return "any"
	}
}

func ParseTransport(s string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return TransportAny, nil
	case "cellular", "mobile":
		return TransportCellular, nil
	case "wifi", "wi-fi":
		return TransportWiFi, nil
	case "ethernet":
		return TransportEthernet, nil
	}
	return TransportAny, fmt.Errorf("%w: %q", ErrUnknownTransport, s)
}

// Capability is a property a requested network must have.
type Capability int

const (
	// CapabilityInternet requires a routable (global unicast) address.
	CapabilityInternet Capability = iota + 1
)

// Request describes the network a caller wants.
type Request struct {
	Transport    Transport
	Capabilities []Capability
	// Timeout bounds the wait for a matching network. Zero waits until the
	// request context ends.
	Timeout time.Duration
}

func (r Request) has(c Capability) bool {
	for _, rc := range r.Capabilities {
		if rc == c {
			return true
		}
	}
	return false
}

// Network is a handle on a specific network path.
type Network interface {
	Name() string
	Transport() Transport
	// Dialer returns a dialer whose connections are routed over this network.
	Dialer(timeout time.Duration) *net.Dialer
}

// Counters are cumulative interface traffic counters.
type Counters struct {
	PacketsSent uint64
	PacketsRecv uint64
	BytesSent   uint64
	BytesRecv   uint64
}

// Sub returns the counter deltas from an earlier sample.
func (c Counters) Sub(before Counters) Counters {
	return Counters{
		PacketsSent: c.PacketsSent - before.PacketsSent,
		PacketsRecv: c.PacketsRecv - before.PacketsRecv,
		BytesSent:   c.BytesSent - before.BytesSent,
		BytesRecv:   c.BytesRecv - before.BytesRecv,
	}
}

// CounterSource is implemented by networks that expose interface counters.
type CounterSource interface {
	Counters() (Counters, error)
}

// Callback receives the outcome of a network request. Implementations are
// used as map keys and must be comparable, typically a pointer.
type Callback interface {
	// OnAvailable runs on the dispatch goroutine. No further events are
	// dispatched for this request until it returns.
	OnAvailable(n Network)
	// OnUnavailable is called when the request times out or its context ends
	// before a matching network appears.
	OnUnavailable()
}

// classify guesses an interface transport from its kernel name.
func classify(name string) Transport {
	prefixes := []struct {
		prefix    string
		transport Transport
	}{
		{"rmnet", TransportCellular},
		{"wwan", TransportCellular},
		{"ccmni", TransportCellular},
		{"ppp", TransportCellular},
		{"wlan", TransportWiFi},
		{"wlp", TransportWiFi},
		{"wl", TransportWiFi},
		{"eth", TransportEthernet},
		{"en", TransportEthernet},
	}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.transport
		}
	}
	return TransportAny
}
