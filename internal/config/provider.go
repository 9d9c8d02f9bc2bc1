package config

import (
	"os"
)

// ProviderConfig names a registered provider and carries its
// provider-specific connection settings.
type ProviderConfig struct {
	Provider string            `yaml:"provider"`
	Settings map[string]string `yaml:"settings"`
}

// expand resolves ${ENV_VAR} references in setting values and fills in the
// shared API credential under "token" unless the provider sets its own.
func (p *ProviderConfig) expand(token string) {
	if p.Settings == nil {
		p.Settings = make(map[string]string)
	}
	for k, v := range p.Settings {
		p.Settings[k] = os.ExpandEnv(v)
	}
	if _, ok := p.Settings["token"]; !ok && token != "" {
		p.Settings["token"] = token
	}
}
