package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/config"
)

func init() {
	Register("static", func(log logr.Logger, settings map[string]string) (Source, error) {
		return NewStatic(log, settings)
	})
}

// Static serves servers listed in a local YAML file, for machines that are
// not visible through any provider account.
type Static struct {
	servers *config.StaticServers
}

// NewStatic loads the file named by the required "path" setting.
func NewStatic(log logr.Logger, settings map[string]string) (*Static, error) {
	path := settings["path"]
	if path == "" {
		return nil, fmt.Errorf("static: missing required setting 'path'")
	}
	servers, err := config.LoadStaticServers(path)
	if err != nil {
		return nil, fmt.Errorf("static: %w", err)
	}
	log.Info("loaded static servers", "path", path, "count", len(servers.Names()))
	return &Static{servers: servers}, nil
}

func (s *Static) Servers(_ context.Context) ([]Server, error) {
	names := s.servers.Names()
	out := make([]Server, 0, len(names))
	for _, name := range names {
		srv := Server{ID: name, Name: name}
		for _, addr := range s.servers.Addresses(name) {
			version := IPv4
			if strings.Contains(addr, ":") {
				version = IPv6
			}
			srv.Networks = append(srv.Networks, Network{Version: version, Address: addr, Type: "static"})
		}
		out = append(out, srv)
	}
	return out, nil
}
