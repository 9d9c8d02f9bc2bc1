package config

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"
)

// StaticServers lists servers that live outside any provider account, keyed
// by name, each with its addresses in attachment order.
type StaticServers struct {
	entries map[string][]string
}

// LoadStaticServers reads a YAML file mapping server names to address lists:
//
//	edge-1:
//	  - 10.0.0.4
//	  - 203.0.113.10
func LoadStaticServers(path string) (*StaticServers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading static servers file: %w", err)
	}

	entries := make(map[string][]string)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing static servers file: %w", err)
	}

	return &StaticServers{entries: entries}, nil
}

// Names returns all server names, sorted.
func (s *StaticServers) Names() []string {
	names := make([]string, 0, len(s.entries))
	for n := range s.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Addresses returns the addresses of the named server in file order.
func (s *StaticServers) Addresses(name string) []string {
	return s.entries[name]
}
