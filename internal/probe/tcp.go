package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/go-logr/logr"
)

// TCP treats a host as alive when any of the ports accepts or actively
// refuses a connection. Only silence on every port means dead.
type TCP struct {
	ports   []int
	timeout time.Duration
	log     logr.Logger
}

func NewTCP(ports []int, timeout time.Duration, log logr.Logger) *TCP {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &TCP{ports: ports, timeout: timeout, log: log}
}

func (p *TCP) Alive(ctx context.Context, address string) bool {
	d := net.Dialer{Timeout: p.timeout}
	for _, port := range p.ports {
		conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
		if err == nil {
			conn.Close()
			return true
		}
		if errors.Is(err, syscall.ECONNREFUSED) {
			p.log.V(1).Info("connection refused, host is up", "address", address, "port", port)
			return true
		}
		p.log.V(1).Info("no answer", "address", address, "port", port, "reason", err.Error())
	}
	return false
}
