//go:build !linux

package netprov

import (
	"context"
	"net"
	"strings"
)

// bindDialer picks the interface's first IPv4 address as the source address
// for connections and DNS queries. Without SO_BINDTODEVICE this only steers
// IPv4 traffic.
func bindDialer(d *net.Dialer, i *Interface) *net.Dialer {
	var src net.IP
	for _, ip := range i.addrs {
		if ip.To4() != nil && ip.IsGlobalUnicast() {
			src = ip
			break
		}
	}
	if src == nil {
		return d
	}

	d.LocalAddr = &net.TCPAddr{IP: src}
	timeout := d.Timeout
	d.Resolver = boundResolver(func(ctx context.Context, network, address string) (net.Conn, error) {
		dns := net.Dialer{Timeout: timeout}
		if strings.HasPrefix(network, "udp") {
			dns.LocalAddr = &net.UDPAddr{IP: src}
		} else {
			dns.LocalAddr = &net.TCPAddr{IP: src}
		}
		return dns.DialContext(ctx, network, address)
	})
	return d
}
