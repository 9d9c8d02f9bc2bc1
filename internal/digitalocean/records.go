package digitalocean

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/dns"
)

type domainRecord struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
	Data string `json:"data"`
	TTL  int    `json:"ttl"`
}

type domainRecordsPage struct {
	DomainRecords []domainRecord `json:"domain_records"`
	Links         links          `json:"links"`
}

// Records lists every record of domain in the order the API returns them.
func (c *Client) Records(ctx context.Context, domain string) ([]dns.Record, error) {
	var records []dns.Record
	path := fmt.Sprintf("domains/%s/records", url.PathEscape(domain))
	err := c.list(ctx, "domainRecords.List", c.endpoint(path), func(r io.Reader) (links, error) {
		var page domainRecordsPage
		if err := json.NewDecoder(r).Decode(&page); err != nil {
			return links{}, err
		}
		for _, rec := range page.DomainRecords {
			records = append(records, dns.Record{
				ID:   strconv.Itoa(rec.ID),
				Type: rec.Type,
				Name: rec.Name,
				Data: rec.Data,
				TTL:  rec.TTL,
			})
		}
		return page.Links, nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("listed domain records", "domain", domain, "count", len(records))
	return records, nil
}

// Delete removes one domain record by its ID.
func (c *Client) Delete(ctx context.Context, domain string, record dns.Record) error {
	if record.ID == "" {
		return fmt.Errorf("digitalocean: cannot delete record without ID")
	}

	c.log.Info("deleting record", "domain", domain, "id", record.ID, "type", record.Type, "data", record.Data)

	rawURL := fmt.Sprintf("%s/domains/%s/records/%s", c.baseURL, url.PathEscape(domain), url.PathEscape(record.ID))
	resp, err := c.doRequest(ctx, "domainRecords.Delete", http.MethodDelete, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.log.Info("record deleted", "domain", domain, "id", record.ID)
	return nil
}
