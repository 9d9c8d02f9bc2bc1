package opnsense

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/giantswarm/microerror"
	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/dns"
	janitorerrors "github.com/yuriy-kovalchuk/yk-dns-janitor/internal/errors"
	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/metrics"
)

const providerName = "opnsense"

func init() {
	dns.Register(providerName, func(log logr.Logger, settings map[string]string) (dns.Provider, error) {
		return New(log, settings)
	})
}

// Provider implements dns.Provider over OPNsense Unbound host overrides.
type Provider struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
	log       logr.Logger
}

// New creates an OPNsense DNS provider from the given settings map.
// Required settings: base_url, api_key, api_secret.
// Optional settings: skip_tls_verify (default false).
func New(log logr.Logger, settings map[string]string) (*Provider, error) {
	baseURL := settings["base_url"]
	if baseURL == "" {
		return nil, fmt.Errorf("opnsense: missing required setting 'base_url'")
	}
	apiKey := settings["api_key"]
	if apiKey == "" {
		return nil, fmt.Errorf("opnsense: missing required setting 'api_key'")
	}
	apiSecret := settings["api_secret"]
	if apiSecret == "" {
		return nil, fmt.Errorf("opnsense: missing required setting 'api_secret'")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if settings["skip_tls_verify"] == "true" {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Provider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    &http.Client{Transport: transport},
		log:       log,
	}, nil
}

// call executes a request against the OPNsense API and decodes a 200 JSON
// response into out.
func (p *Provider) call(ctx context.Context, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("opnsense: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+"/"+strings.TrimLeft(path, "/"), bodyReader)
	if err != nil {
		return fmt.Errorf("opnsense: build request: %w", err)
	}
	req.SetBasicAuth(p.apiKey, p.apiSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	op := endpointName(path)
	metrics.APIRequest.WithLabelValues(providerName, op).Inc()

	resp, err := p.client.Do(req)
	if err != nil {
		metrics.APIRequestError.WithLabelValues(providerName, op).Inc()
		return fmt.Errorf("opnsense: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.APIRequestError.WithLabelValues(providerName, op).Inc()
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			return microerror.Maskf(janitorerrors.NotFoundError, "opnsense: %s returned status %d: %s", op, resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("opnsense: %s returned status %d: %s", op, resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("opnsense: decode %s response: %w", op, err)
	}
	return nil
}

// endpointName strips IDs from an API path, e.g.
// "unbound/settings/delHostOverride/abc" → "delHostOverride".
func endpointName(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 3 {
		return parts[2]
	}
	return path
}

// reconfigure tells OPNsense to apply DNS changes.
func (p *Provider) reconfigure(ctx context.Context) error {
	var result struct {
		Status string `json:"status"`
	}
	if err := p.call(ctx, http.MethodPost, "unbound/service/reconfigure", struct{}{}, &result); err != nil {
		return fmt.Errorf("opnsense: reconfigure: %w", err)
	}
	p.log.V(1).Info("reconfigure completed", "status", result.Status)
	return nil
}

// searchResponse is the shape returned by searchHostOverride.
type searchResponse struct {
	Rows []hostRow `json:"rows"`
}

// hostRow represents a single host override row from the search response.
type hostRow struct {
	UUID     string `json:"uuid"`
	Enabled  string `json:"enabled"`
	Hostname string `json:"hostname"`
	Domain   string `json:"domain"`
	RR       string `json:"rr"`
	Server   string `json:"server"`
}

// Records returns the host overrides whose domain is the given domain.
// Disabled overrides are not served by Unbound and are left out.
func (p *Provider) Records(ctx context.Context, domain string) ([]dns.Record, error) {
	var sr searchResponse
	if err := p.call(ctx, http.MethodGet, "unbound/settings/searchHostOverride", nil, &sr); err != nil {
		return nil, err
	}

	var records []dns.Record
	for _, row := range sr.Rows {
		if !strings.EqualFold(row.Domain, domain) || row.Enabled == "0" {
			continue
		}
		name := row.Hostname
		if name == "" {
			name = "@"
		}
		records = append(records, dns.Record{
			ID:   row.UUID,
			Type: strings.ToUpper(row.RR),
			Name: name,
			Data: row.Server,
		})
	}

	p.log.Info("listed host overrides", "domain", domain, "count", len(records))
	return records, nil
}

// Delete removes a host override by UUID and applies the change.
func (p *Provider) Delete(ctx context.Context, domain string, record dns.Record) error {
	if record.ID == "" {
		return fmt.Errorf("opnsense: cannot delete override without UUID")
	}
	p.log.Info("deleting record", "hostname", dns.FQDN(record.Name, domain), "type", record.Type, "uuid", record.ID)

	var result struct {
		Result string `json:"result"`
	}
	if err := p.call(ctx, http.MethodPost, fmt.Sprintf("unbound/settings/delHostOverride/%s", record.ID), struct{}{}, &result); err != nil {
		return err
	}
	if result.Result != "deleted" {
		return fmt.Errorf("opnsense: delHostOverride unexpected result: %s", result.Result)
	}

	p.log.Info("record deleted", "uuid", record.ID)
	return p.reconfigure(ctx)
}
