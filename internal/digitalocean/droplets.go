package digitalocean

import (
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/inventory"
)

type droplet struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Networks struct {
		V4 []dropletNetwork `json:"v4"`
		V6 []dropletNetwork `json:"v6"`
	} `json:"networks"`
}

type dropletNetwork struct {
	IPAddress string `json:"ip_address"`
	Type      string `json:"type"`
}

type dropletsPage struct {
	Droplets []droplet `json:"droplets"`
	Links    links     `json:"links"`
}

func (d droplet) server() inventory.Server {
	s := inventory.Server{ID: strconv.Itoa(d.ID), Name: d.Name}
	for _, n := range d.Networks.V4 {
		s.Networks = append(s.Networks, inventory.Network{Version: inventory.IPv4, Address: n.IPAddress, Type: n.Type})
	}
	for _, n := range d.Networks.V6 {
		s.Networks = append(s.Networks, inventory.Network{Version: inventory.IPv6, Address: n.IPAddress, Type: n.Type})
	}
	return s
}

// Servers lists every droplet of the account with its network attachments.
func (c *Client) Servers(ctx context.Context) ([]inventory.Server, error) {
	var servers []inventory.Server
	err := c.list(ctx, "droplets.List", c.endpoint("droplets"), func(r io.Reader) (links, error) {
		var page dropletsPage
		if err := json.NewDecoder(r).Decode(&page); err != nil {
			return links{}, err
		}
		for _, d := range page.Droplets {
			servers = append(servers, d.server())
		}
		return page.Links, nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("listed droplets", "count", len(servers))
	return servers, nil
}
