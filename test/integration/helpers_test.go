package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"k8s.io/apimachinery/pkg/util/sets"
)

// stubProber answers from a fixed set of live addresses and records every probe.
type stubProber struct {
	mu     sync.Mutex
	live   sets.Set[string]
	probed []string
}

func newStubProber(live ...string) *stubProber {
	return &stubProber{live: sets.New(live...)}
}

func (p *stubProber) Alive(_ context.Context, address string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probed = append(p.probed, address)
	return p.live.Has(address)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
