package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/giantswarm/microerror"
	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	janitorerrors "github.com/yuriy-kovalchuk/yk-dns-janitor/internal/errors"
)

const (
	// DefaultPath is read when no config path is given and the file exists.
	DefaultPath = "configs/janitor.yaml"

	// DefaultEnvFile holds API_KEY (and anything else) for local runs.
	DefaultEnvFile = ".env"

	defaultProvider = "digitalocean"
	defaultJob      = "yk-dns-janitor"
)

// Config is the complete janitor configuration, resolved once at startup.
type Config struct {
	Domain    string           `yaml:"domain"`
	DryRun    bool             `yaml:"dry_run"`
	DNS       ProviderConfig   `yaml:"dns"`
	Inventory []ProviderConfig `yaml:"inventory"`
	Probe     ProbeConfig      `yaml:"probe"`
	Metrics   MetricsConfig    `yaml:"metrics"`

	// APIKey is never read from the YAML file, only from API_KEY.
	APIKey string `yaml:"-"`
}

// ProbeConfig selects and tunes the liveness probe.
type ProbeConfig struct {
	Method      string        `yaml:"method"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
	TCPPorts    []int         `yaml:"tcp_ports"`
	Command     string        `yaml:"command"`
	Privileged  bool          `yaml:"privileged"`
}

// MetricsConfig controls the optional Pushgateway export.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// LoadEnvFile loads variables from an env file into the process environment.
// Variables already set in the environment win. A missing file is not an
// error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// ResolvePath returns the config path to load: the explicit path if given,
// otherwise JANITOR_CONFIG, otherwise DefaultPath when that file exists.
// An empty result means "defaults only".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("JANITOR_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// Load reads the YAML config at path (or starts from defaults when path is
// empty) and resolves environment-provided values.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.APIKey = os.Getenv("API_KEY")
	if cfg.Domain == "" {
		cfg.Domain = os.Getenv("DOMAIN")
	}
	cfg.setDefaults()
	cfg.expandSettings()

	return cfg, nil
}

func (c *Config) expandSettings() {
	c.DNS.expand(c.APIKey)
	for i := range c.Inventory {
		c.Inventory[i].expand(c.APIKey)
	}
}

func (c *Config) setDefaults() {
	if c.DNS.Provider == "" {
		c.DNS.Provider = defaultProvider
	}
	if len(c.Inventory) == 0 {
		c.Inventory = []ProviderConfig{{Provider: defaultProvider}}
	}
	if c.Probe.Method == "" {
		c.Probe.Method = "exec"
	}
	if c.Probe.Concurrency == 0 {
		c.Probe.Concurrency = 1
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = 2 * time.Second
	}
	if len(c.Probe.TCPPorts) == 0 {
		c.Probe.TCPPorts = []int{22, 80, 443}
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = defaultJob
	}
}

// Validate checks that everything needed before the first network call is
// present. Errors are InvalidConfigError.
func (c *Config) Validate() error {
	if c.Domain == "" {
		return microerror.Maskf(janitorerrors.InvalidConfigError, "domain must not be empty (set --domain, DOMAIN or 'domain' in the config file)")
	}
	for _, inv := range c.Inventory {
		if inv.Provider == "" {
			return microerror.Maskf(janitorerrors.InvalidConfigError, "inventory entry is missing required field 'provider'")
		}
	}
	for _, p := range c.providers() {
		if p.Provider == defaultProvider && p.Settings["token"] == "" {
			return microerror.Maskf(janitorerrors.InvalidConfigError, "API_KEY not found in environment, set it in the environment, in the env file or as the provider's 'token' setting")
		}
	}
	switch c.Probe.Method {
	case "exec", "icmp", "tcp":
	default:
		return microerror.Maskf(janitorerrors.InvalidConfigError, "unknown probe method %q (want exec, icmp or tcp)", c.Probe.Method)
	}
	if c.Probe.Concurrency < 1 {
		return microerror.Maskf(janitorerrors.InvalidConfigError, "probe concurrency must be at least 1, got %d", c.Probe.Concurrency)
	}
	return nil
}

func (c *Config) providers() []ProviderConfig {
	return append([]ProviderConfig{c.DNS}, c.Inventory...)
}
