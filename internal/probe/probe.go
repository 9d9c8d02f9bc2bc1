package probe

import (
	"context"
	"time"

	"github.com/giantswarm/microerror"
	"github.com/go-logr/logr"

	janitorerrors "github.com/yuriy-kovalchuk/yk-dns-janitor/internal/errors"
)

const (
	MethodExec = "exec"
	MethodICMP = "icmp"
	MethodTCP  = "tcp"
)

// Prober answers whether an address responds right now. Any failure to probe
// counts as not alive.
type Prober interface {
	Alive(ctx context.Context, address string) bool
}

// Options tunes the probers. Exec ignores Timeout and Ports.
type Options struct {
	Timeout    time.Duration
	Ports      []int
	Command    string
	Privileged bool
}

// New creates the prober registered under method.
func New(method string, opts Options, log logr.Logger) (Prober, error) {
	switch method {
	case MethodExec, "":
		return NewExec(opts.Command, log), nil
	case MethodICMP:
		return NewICMP(opts.Timeout, opts.Privileged, log), nil
	case MethodTCP:
		return NewTCP(opts.Ports, opts.Timeout, log), nil
	default:
		return nil, microerror.Maskf(janitorerrors.InvalidConfigError, "unknown probe method %q", method)
	}
}
