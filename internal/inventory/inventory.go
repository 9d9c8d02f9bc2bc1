package inventory

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/metrics"
)

// Source lists compute instances.
type Source interface {
	Servers(ctx context.Context) ([]Server, error)
}

// Build queries every source once and returns the set of representative
// addresses, one per server with an IPv4 attachment. The first source error
// aborts the build.
func Build(ctx context.Context, log logr.Logger, sources ...Source) (sets.Set[string], error) {
	addresses := sets.New[string]()

	for _, src := range sources {
		servers, err := src.Servers(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing servers: %w", err)
		}

		for _, s := range servers {
			addr, ok := SelectAddress(s)
			if !ok {
				log.V(1).Info("server has no IPv4 address, skipping", "server", s.Name, "id", s.ID)
				continue
			}
			log.V(1).Info("selected server address", "server", s.Name, "id", s.ID, "address", addr)
			addresses.Insert(addr)
		}
	}

	metrics.InventoryAddresses.Set(float64(addresses.Len()))
	return addresses, nil
}
