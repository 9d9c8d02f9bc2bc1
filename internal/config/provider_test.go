package config

import (
	"testing"
)

func TestLoadProviderSettings(t *testing.T) {
	t.Setenv("API_KEY", "do-token")

	path := writeConfig(t, `domain: example.com
dns:
  provider: opnsense
  settings:
    base_url: "https://opnsense.local/api"
    api_key: "testkey"
    api_secret: "testsecret"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DNS.Provider != "opnsense" {
		t.Errorf("expected provider 'opnsense', got %q", cfg.DNS.Provider)
	}
	if cfg.DNS.Settings["base_url"] != "https://opnsense.local/api" {
		t.Errorf("expected base_url 'https://opnsense.local/api', got %q", cfg.DNS.Settings["base_url"])
	}
	if cfg.DNS.Settings["api_key"] != "testkey" {
		t.Errorf("expected api_key 'testkey', got %q", cfg.DNS.Settings["api_key"])
	}
}

func TestLoadProviderSettings_EnvVarExpansion(t *testing.T) {
	t.Setenv("API_KEY", "do-token")
	t.Setenv("TEST_SUBSCRIPTION", "sub-from-env")

	path := writeConfig(t, `domain: example.com
dns:
  provider: azure
  settings:
    subscription_id: "${TEST_SUBSCRIPTION}"
    resource_group: "${UNSET_VAR_THAT_DOES_NOT_EXIST}"
    tenant_id: "literal-value"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DNS.Settings["subscription_id"] != "sub-from-env" {
		t.Errorf("expected subscription_id 'sub-from-env', got %q", cfg.DNS.Settings["subscription_id"])
	}
	// Unset env var expands to empty string.
	if cfg.DNS.Settings["resource_group"] != "" {
		t.Errorf("expected resource_group '' for unset env var, got %q", cfg.DNS.Settings["resource_group"])
	}
	// Literal values without ${} stay as-is.
	if cfg.DNS.Settings["tenant_id"] != "literal-value" {
		t.Errorf("expected tenant_id 'literal-value', got %q", cfg.DNS.Settings["tenant_id"])
	}
}

func TestLoadProviderSettings_TokenDefault(t *testing.T) {
	t.Setenv("API_KEY", "do-token")

	path := writeConfig(t, `domain: example.com
inventory:
  - provider: digitalocean
  - provider: digitalocean
    settings:
      token: "other-account"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.DNS.Settings["token"]; got != "do-token" {
		t.Errorf("expected DNS token from API_KEY, got %q", got)
	}
	if got := cfg.Inventory[0].Settings["token"]; got != "do-token" {
		t.Errorf("expected inventory token from API_KEY, got %q", got)
	}
	if got := cfg.Inventory[1].Settings["token"]; got != "other-account" {
		t.Errorf("expected explicit token to be kept, got %q", got)
	}
}
