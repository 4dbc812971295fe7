//go:build linux

package netprov

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// bindDialer pins sockets to the interface with SO_BINDTODEVICE. Connections
// and the DNS queries made to resolve their addresses both leave via that
// interface.
func bindDialer(d *net.Dialer, i *Interface) *net.Dialer {
	d.Control = bindToDevice(i.name)
	dns := &net.Dialer{Timeout: d.Timeout, Control: d.Control}
	d.Resolver = boundResolver(dns.DialContext)
	return d
}

func bindToDevice(name string) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptString(int(fd), unix.SOL_SOCKET, unix.SO_BINDTODEVICE, name)
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}
