package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestPush(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	Records.WithLabelValues("skip").Inc()

	if err := Push(srv.URL, "yk-dns-janitor", "example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPut {
		t.Errorf("expected PUT, got %s", method)
	}
	if path != "/metrics/job/yk-dns-janitor/domain/example.com" {
		t.Errorf("unexpected push path %q", path)
	}
	if len(body) == 0 {
		t.Error("expected a non-empty metrics payload")
	}
}

func TestPush_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Push(srv.URL, "yk-dns-janitor", "example.com")
	if err == nil {
		t.Fatal("expected error from failing pushgateway, got nil")
	}
	if !strings.Contains(err.Error(), srv.URL) {
		t.Errorf("expected error to name the pushgateway, got %v", err)
	}
}
