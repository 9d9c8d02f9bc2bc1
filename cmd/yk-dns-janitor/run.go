package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"k8s.io/apimachinery/pkg/util/sets"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/config"
	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/dns"
	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/inventory"
	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/metrics"
	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/probe"
	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/reconciler"
)

// loadConfig resolves the configuration from the env file, the config file
// and the command line, in increasing priority, and validates it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadEnvFile(c.String("env-file")); err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.ResolvePath(c.String("config")))
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if c.IsSet("domain") {
		cfg.Domain = c.String("domain")
	}
	if c.IsSet("dry-run") {
		cfg.DryRun = c.Bool("dry-run")
	}
	if c.IsSet("probe") {
		cfg.Probe.Method = c.String("probe")
	}
	if c.IsSet("concurrency") {
		cfg.Probe.Concurrency = c.Int("concurrency")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunLogger() logr.Logger {
	return ctrllog.Log.WithName("janitor").WithValues("run", uuid.NewString())
}

func buildInventory(c *cli.Context, cfg *config.Config, log logr.Logger) (sets.Set[string], error) {
	sources := make([]inventory.Source, 0, len(cfg.Inventory))
	for _, inv := range cfg.Inventory {
		src, err := inventory.NewSource(inv.Provider, log.WithName("inventory-"+inv.Provider), inv.Settings)
		if err != nil {
			return nil, fmt.Errorf("unable to create inventory source: %w", err)
		}
		sources = append(sources, src)
	}
	return inventory.Build(c.Context, log.WithName("inventory"), sources...)
}

func reconcileAction(c *cli.Context) error {
	log := newRunLogger()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log = log.WithValues("domain", cfg.Domain)
	log.Info("starting yk-dns-janitor", "version", Version, "dnsProvider", cfg.DNS.Provider, "probe", cfg.Probe.Method, "dryRun", cfg.DryRun)

	provider, err := dns.NewProvider(cfg.DNS.Provider, log.WithName("dns-"+cfg.DNS.Provider), cfg.DNS.Settings)
	if err != nil {
		return fmt.Errorf("unable to create DNS provider: %w", err)
	}
	prober, err := probe.New(cfg.Probe.Method, probe.Options{
		Timeout:    cfg.Probe.Timeout,
		Ports:      cfg.Probe.TCPPorts,
		Command:    cfg.Probe.Command,
		Privileged: cfg.Probe.Privileged,
	}, log.WithName("probe"))
	if err != nil {
		return err
	}

	servers, err := buildInventory(c, cfg, log)
	if err != nil {
		return err
	}

	status := reconciler.NewStatusPrinter(c.App.Writer, c.Bool("no-color"))
	status.ServerIPs(servers)

	r := &reconciler.Reconciler{
		Log:         log.WithName("reconciler"),
		DNS:         provider,
		Prober:      prober,
		Status:      status,
		DryRun:      cfg.DryRun,
		Concurrency: cfg.Probe.Concurrency,
	}
	summary, err := r.Run(c.Context, cfg.Domain, servers)
	if err != nil {
		return err
	}
	status.Summary(summary)
	if err := summary.Err(); err != nil {
		log.Info("some records could not be deleted", "failed", summary.Failed, "errors", err.Error())
	}

	if cfg.Metrics.PushgatewayURL != "" {
		if err := metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, cfg.Domain); err != nil {
			log.Error(err, "unable to push metrics")
		} else {
			log.V(1).Info("pushed metrics", "url", cfg.Metrics.PushgatewayURL, "job", cfg.Metrics.Job)
		}
	}
	return nil
}

func inventoryAction(c *cli.Context) error {
	log := newRunLogger()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	servers, err := buildInventory(c, cfg, log)
	if err != nil {
		return err
	}
	for _, ip := range sets.List(servers) {
		fmt.Fprintln(c.App.Writer, ip)
	}
	return nil
}

func recordsAction(c *cli.Context) error {
	log := newRunLogger()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	provider, err := dns.NewProvider(cfg.DNS.Provider, log.WithName("dns-"+cfg.DNS.Provider), cfg.DNS.Settings)
	if err != nil {
		return fmt.Errorf("unable to create DNS provider: %w", err)
	}
	servers, err := buildInventory(c, cfg, log)
	if err != nil {
		return err
	}
	records, err := provider.Records(c.Context, cfg.Domain)
	if err != nil {
		return fmt.Errorf("listing records of %s: %w", cfg.Domain, err)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tADDRESS\tMATCH")
	for _, rec := range records {
		if !rec.IsAddress() {
			continue
		}
		match := "unknown"
		if servers.Has(rec.Data) {
			match = "server"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.ID, rec.Name, rec.Data, match)
	}
	return w.Flush()
}
