package inventory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"
)

// Factory is a constructor function that inventory sources register to create themselves.
type Factory func(log logr.Logger, settings map[string]string) (Source, error)

var (
	mu        sync.Mutex
	factories = make(map[string]Factory)
)

// Register is called by source packages in their init() to self-register.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("inventory: source %q already registered", name))
	}
	factories[name] = f
}

func registered() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewSource looks up the named source in the registry and creates it.
func NewSource(name string, log logr.Logger, settings map[string]string) (Source, error) {
	mu.Lock()
	f, ok := factories[name]
	mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unsupported inventory source: %q (registered: %v)", name, registered())
	}
	return f(log, settings)
}
