package probe

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	defaultTimeout = 2 * time.Second

	// protocolICMP is the IANA protocol number ParseMessage expects for IPv4.
	protocolICMP = 1
)

// ICMP sends a single echo request from the process itself. Unprivileged mode
// uses a datagram ICMP socket (net.ipv4.ping_group_range on Linux); privileged
// mode needs CAP_NET_RAW.
type ICMP struct {
	timeout    time.Duration
	privileged bool
	log        logr.Logger
}

func NewICMP(timeout time.Duration, privileged bool, log logr.Logger) *ICMP {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ICMP{timeout: timeout, privileged: privileged, log: log}
}

func (p *ICMP) Alive(ctx context.Context, address string) bool {
	ip := net.ParseIP(address).To4()
	if ip == nil {
		p.log.Error(fmt.Errorf("not an IPv4 address"), "probe could not be run", "address", address)
		return false
	}
	if err := p.echo(ctx, ip); err != nil {
		p.log.V(1).Info("no reply", "address", address, "reason", err.Error())
		return false
	}
	return true
}

func (p *ICMP) echo(ctx context.Context, ip net.IP) error {
	network := "udp4"
	var dst net.Addr = &net.UDPAddr{IP: ip}
	if p.privileged {
		network = "ip4:icmp"
		dst = &net.IPAddr{IP: ip}
	}

	conn, err := icmp.ListenPacket(network, "0.0.0.0")
	if err != nil {
		p.log.Error(err, "probe could not be run", "network", network)
		return err
	}
	defer conn.Close()

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  1,
			Data: []byte("yk-dns-janitor"),
		},
	}
	wb, err := msg.Marshal(nil)
	if err != nil {
		return err
	}
	if _, err := conn.WriteTo(wb, dst); err != nil {
		return err
	}

	rb := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(rb)
		if err != nil {
			return err
		}
		if !peerIP(peer).Equal(ip) {
			continue
		}
		rm, err := icmp.ParseMessage(protocolICMP, rb[:n])
		if err != nil {
			return err
		}
		if rm.Type == ipv4.ICMPTypeEchoReply {
			return nil
		}
	}
}

func peerIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.IP
	case *net.IPAddr:
		return a.IP
	}
	return nil
}
