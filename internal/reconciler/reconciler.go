package reconciler

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/dns"
	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/metrics"
	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/probe"
)

// Reconciler removes address records that point at neither a known server
// nor a live host.
type Reconciler struct {
	Log    logr.Logger
	DNS    dns.Provider
	Prober probe.Prober
	Status *StatusPrinter

	// DryRun reports deletions without issuing them.
	DryRun bool
	// Concurrency > 1 probes unknown addresses in parallel before acting.
	// Decisions and output stay in listing order either way.
	Concurrency int
}

// Summary counts the decisions of one run.
type Summary struct {
	Checked int
	Skipped int
	Live    int
	Deleted int
	DryRun  int
	Failed  int

	errs []error
}

// Err aggregates the deletion failures of the run, nil when there were none.
func (s Summary) Err() error {
	return utilerrors.NewAggregate(s.errs)
}

func (s *Summary) add(d Decision) {
	switch d {
	case Skip:
		s.Skipped++
	case ProbeLive:
		s.Live++
	case ProbeDeadDeleted:
		s.Deleted++
	case ProbeDeadKept:
		s.DryRun++
	}
	metrics.Records.WithLabelValues(d.String()).Inc()
}

// Run lists the records of domain once and handles every A record in listing
// order. A listing failure or cancellation of ctx is returned as an error;
// deletion failures are reported per record and collected in the summary.
// A probe cut short by cancellation never leads to a delete.
func (r *Reconciler) Run(ctx context.Context, domain string, servers sets.Set[string]) (Summary, error) {
	log := r.Log.WithValues("domain", domain)

	records, err := r.DNS.Records(ctx, domain)
	if err != nil {
		return Summary{}, fmt.Errorf("listing records of %s: %w", domain, err)
	}

	var probed map[int]bool
	if r.Concurrency > 1 {
		probed, err = r.probeAll(ctx, records, servers)
		if err != nil {
			return Summary{}, err
		}
	}

	var s Summary
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return s, fmt.Errorf("reconciliation of %s interrupted: %w", domain, err)
		}
		if !rec.IsAddress() {
			continue
		}
		s.Checked++

		if servers.Has(rec.Data) {
			log.V(1).Info("address belongs to a server", "id", rec.ID, "address", rec.Data)
			r.Status.Skip(rec)
			s.add(Skip)
			continue
		}

		r.Status.Check(rec)
		alive, ok := probed[i]
		if !ok {
			alive = r.probe(ctx, rec.Data)
		}
		if err := ctx.Err(); err != nil {
			return s, fmt.Errorf("reconciliation of %s interrupted while probing %s: %w", domain, rec.Data, err)
		}
		if alive {
			r.Status.Live(rec)
			s.add(ProbeLive)
			continue
		}

		if r.DryRun {
			log.Info("dry run, keeping unreachable record", "id", rec.ID, "address", rec.Data)
			r.Status.DryRun(rec)
			s.add(ProbeDeadKept)
			continue
		}

		r.Status.Delete(rec)
		if err := r.DNS.Delete(ctx, domain, rec); err != nil {
			log.Error(err, "deleting record failed", "id", rec.ID, "address", rec.Data)
			r.Status.DeleteFailed(rec, err)
			metrics.DeleteErrors.Inc()
			s.Failed++
			s.errs = append(s.errs, fmt.Errorf("record %s: %w", rec.ID, err))
			continue
		}
		s.add(ProbeDeadDeleted)
	}

	log.Info("reconciliation finished",
		"checked", s.Checked, "skipped", s.Skipped, "live", s.Live,
		"deleted", s.Deleted, "dryRun", s.DryRun, "failed", s.Failed)
	return s, nil
}

// probeAll probes every unknown address up front, at most Concurrency at a
// time. The result is keyed by record index.
func (r *Reconciler) probeAll(ctx context.Context, records []dns.Record, servers sets.Set[string]) (map[int]bool, error) {
	results := make([]bool, len(records))
	pending := make([]int, 0, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Concurrency)
	for i, rec := range records {
		if !rec.IsAddress() || servers.Has(rec.Data) {
			continue
		}
		i, addr := i, rec.Data
		pending = append(pending, i)
		g.Go(func() error {
			results[i] = r.probe(gctx, addr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[int]bool, len(pending))
	for _, i := range pending {
		out[i] = results[i]
	}
	return out, nil
}

func (r *Reconciler) probe(ctx context.Context, address string) bool {
	alive := r.Prober.Alive(ctx, address)
	result := metrics.ProbeResultDead
	if alive {
		result = metrics.ProbeResultAlive
	}
	metrics.Probes.WithLabelValues(result).Inc()
	r.Log.V(1).Info("probed address", "address", address, "result", result)
	return alive
}
