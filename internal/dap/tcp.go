package dap

import (
	"fmt"
	"net"
	"strconv"

	"phpext/internal/host"
)

const (
	DefaultTCPHost    = "127.0.0.1"
	DefaultTCPTimeout = uint64(2000)
)

// ResolveTCP fills the unset parts of tmpl. A missing port is replaced with
// one the OS reports free on the chosen host.
func ResolveTCP(tmpl *TCPTemplate) (TCPArguments, error) {
	args := TCPArguments{Host: DefaultTCPHost, Timeout: DefaultTCPTimeout}
	if tmpl == nil {
		tmpl = &TCPTemplate{}
	}
	if tmpl.Host != nil && *tmpl.Host != "" {
		args.Host = *tmpl.Host
	}
	if tmpl.Timeout != nil {
		args.Timeout = *tmpl.Timeout
	}
	if tmpl.Port != nil {
		args.Port = *tmpl.Port
		return args, nil
	}

	port, err := freePort(args.Host)
	if err != nil {
		return TCPArguments{}, err
	}
	args.Port = port
	return args, nil
}

func freePort(hostAddr string) (uint16, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(hostAddr, "0"))
	if err != nil {
		return 0, host.Wrap(host.KindEnvironment, err, "find free port on %s", hostAddr)
	}
	defer ln.Close()

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		return 0, fmt.Errorf("parse listener address: %w", err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("parse port %q: %w", portStr, err)
	}
	return uint16(port), nil
}
