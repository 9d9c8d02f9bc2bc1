package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	janitorerrors "github.com/yuriy-kovalchuk/yk-dns-janitor/internal/errors"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "janitor.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("API_KEY", "do-token")
	unsetEnv(t, "DOMAIN")

	path := writeConfig(t, `domain: example.com
dry_run: true
dns:
  provider: digitalocean
inventory:
  - provider: digitalocean
  - provider: static
    settings:
      path: configs/static.yaml
probe:
  method: tcp
  concurrency: 4
  timeout: 500ms
  tcp_ports: [22]
metrics:
  pushgateway_url: http://pushgateway:9091
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Domain != "example.com" {
		t.Errorf("expected domain 'example.com', got %q", cfg.Domain)
	}
	if !cfg.DryRun {
		t.Error("expected DryRun to be true")
	}
	if cfg.APIKey != "do-token" {
		t.Errorf("expected APIKey from environment, got %q", cfg.APIKey)
	}
	if len(cfg.Inventory) != 2 {
		t.Fatalf("expected 2 inventory sources, got %d", len(cfg.Inventory))
	}
	if cfg.Inventory[1].Settings["path"] != "configs/static.yaml" {
		t.Errorf("expected static path setting, got %q", cfg.Inventory[1].Settings["path"])
	}
	if cfg.Probe.Method != "tcp" || cfg.Probe.Concurrency != 4 {
		t.Errorf("unexpected probe config: %+v", cfg.Probe)
	}
	if cfg.Probe.Timeout != 500*time.Millisecond {
		t.Errorf("expected timeout 500ms, got %s", cfg.Probe.Timeout)
	}
	if !reflect.DeepEqual(cfg.Probe.TCPPorts, []int{22}) {
		t.Errorf("expected tcp ports [22], got %v", cfg.Probe.TCPPorts)
	}
	if cfg.Metrics.Job != "yk-dns-janitor" {
		t.Errorf("expected default job name, got %q", cfg.Metrics.Job)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "do-token")
	t.Setenv("DOMAIN", "example.org")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Domain != "example.org" {
		t.Errorf("expected domain from DOMAIN, got %q", cfg.Domain)
	}
	if cfg.DNS.Provider != "digitalocean" {
		t.Errorf("expected default DNS provider 'digitalocean', got %q", cfg.DNS.Provider)
	}
	if len(cfg.Inventory) != 1 || cfg.Inventory[0].Provider != "digitalocean" {
		t.Errorf("expected default digitalocean inventory, got %+v", cfg.Inventory)
	}
	if cfg.Probe.Method != "exec" || cfg.Probe.Concurrency != 1 {
		t.Errorf("unexpected default probe config: %+v", cfg.Probe)
	}
	if cfg.DryRun {
		t.Error("expected DryRun to default to false")
	}
}

func TestLoad_FileDomainWinsOverEnv(t *testing.T) {
	t.Setenv("API_KEY", "do-token")
	t.Setenv("DOMAIN", "from-env.com")

	cfg, err := Load(writeConfig(t, "domain: from-file.com\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Domain != "from-file.com" {
		t.Errorf("expected domain from file, got %q", cfg.Domain)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/janitor.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", "token", func(c *Config) {}, false},
		{"missing domain", "token", func(c *Config) { c.Domain = "" }, true},
		{"missing credential", "", func(c *Config) {}, true},
		{"credential not needed without digitalocean", "", func(c *Config) {
			c.DNS.Provider = "azure"
			c.Inventory = []ProviderConfig{{Provider: "static"}}
		}, false},
		{"explicit tokens without API_KEY", "", func(c *Config) {
			c.DNS.Settings = map[string]string{"token": "secret"}
			c.Inventory = []ProviderConfig{{Provider: "digitalocean", Settings: map[string]string{"token": "secret"}}}
		}, false},
		{"explicit token on DNS only", "", func(c *Config) {
			c.DNS.Settings = map[string]string{"token": "secret"}
		}, true},
		{"empty explicit token", "token", func(c *Config) {
			c.DNS.Settings = map[string]string{"token": ""}
		}, true},
		{"inventory without provider", "token", func(c *Config) { c.Inventory = append(c.Inventory, ProviderConfig{}) }, true},
		{"unknown probe", "token", func(c *Config) { c.Probe.Method = "carrier-pigeon" }, true},
		{"zero concurrency", "token", func(c *Config) { c.Probe.Concurrency = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Domain: "example.com", APIKey: tt.apiKey}
			c.setDefaults()
			tt.mutate(c)
			c.expandSettings()

			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !janitorerrors.IsInvalidConfig(err) {
				t.Errorf("expected InvalidConfigError, got %v", err)
			}
		})
	}
}

func TestLoad_ExplicitTokenWithoutAPIKey(t *testing.T) {
	unsetEnv(t, "API_KEY")
	t.Setenv("DO_TOKEN", "secret")

	cfg, err := Load(writeConfig(t, `domain: example.com
dns:
  provider: digitalocean
  settings:
    token: "${DO_TOKEN}"
inventory:
  - provider: digitalocean
    settings:
      token: "${DO_TOKEN}"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.DNS.Settings["token"]; got != "secret" {
		t.Errorf("expected DNS token 'secret', got %q", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected explicit tokens to satisfy validation, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	unsetEnv(t, "API_KEY")
	t.Setenv("DOMAIN", "already-set.com")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("API_KEY=from-dotenv\nDOMAIN=from-dotenv.com\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := os.Getenv("API_KEY"); got != "from-dotenv" {
		t.Errorf("expected API_KEY from env file, got %q", got)
	}
	// Real environment wins over the file.
	if got := os.Getenv("DOMAIN"); got != "already-set.com" {
		t.Errorf("expected DOMAIN to keep its environment value, got %q", got)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("expected missing env file to be ignored, got %v", err)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("JANITOR_CONFIG", "/etc/janitor.yaml")

	if got := ResolvePath("explicit.yaml"); got != "explicit.yaml" {
		t.Errorf("expected explicit path, got %q", got)
	}
	if got := ResolvePath(""); got != "/etc/janitor.yaml" {
		t.Errorf("expected JANITOR_CONFIG path, got %q", got)
	}
}
