package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/dns/armdns"
	"github.com/giantswarm/microerror"
	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/dns"
	janitorerrors "github.com/yuriy-kovalchuk/yk-dns-janitor/internal/errors"
)

const providerName = "azure"

func init() {
	dns.Register(providerName, func(log logr.Logger, settings map[string]string) (dns.Provider, error) {
		return New(log, settings)
	})
}

// Provider implements dns.Provider for an Azure public DNS zone. Azure groups
// A records into record sets; each IPv4 address of a set is surfaced as its
// own dns.Record with ID "<set name>/<address>".
type Provider struct {
	resourceGroup string
	client        recordSets
	log           logr.Logger
}

// New creates an Azure DNS provider from the given settings map.
// Required settings: subscription_id, resource_group.
// Optional settings: tenant_id, client_id, client_secret. When all three are
// set a client-secret credential is used, otherwise the default credential
// chain (environment, managed identity, Azure CLI).
func New(log logr.Logger, settings map[string]string) (*Provider, error) {
	subscriptionID := settings["subscription_id"]
	if subscriptionID == "" {
		return nil, fmt.Errorf("azure: missing required setting 'subscription_id'")
	}
	resourceGroup := settings["resource_group"]
	if resourceGroup == "" {
		return nil, fmt.Errorf("azure: missing required setting 'resource_group'")
	}

	var cred azcore.TokenCredential
	var err error
	tenantID, clientID, secret := settings["tenant_id"], settings["client_id"], settings["client_secret"]
	if tenantID != "" && clientID != "" && secret != "" {
		cred, err = azidentity.NewClientSecretCredential(tenantID, clientID, secret, nil)
	} else {
		cred, err = azidentity.NewDefaultAzureCredential(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("azure: creating credential: %w", err)
	}

	client, err := newAzureClient(subscriptionID, cred)
	if err != nil {
		return nil, fmt.Errorf("azure: creating record sets client: %w", err)
	}

	return &Provider{resourceGroup: resourceGroup, client: client, log: log}, nil
}

// Records lists all record sets of the zone named domain.
func (p *Provider) Records(ctx context.Context, domain string) ([]dns.Record, error) {
	sets, err := p.client.List(ctx, p.resourceGroup, domain)
	if err != nil {
		return nil, fmt.Errorf("azure: listing record sets of %s: %w", domain, err)
	}

	var records []dns.Record
	for _, set := range sets {
		records = append(records, recordsFromSet(set)...)
	}

	p.log.Info("listed record sets", "zone", domain, "sets", len(sets), "records", len(records))
	return records, nil
}

// Delete removes the record's address from its A record set, deleting the
// whole set when it was the last address.
func (p *Provider) Delete(ctx context.Context, domain string, record dns.Record) error {
	if !record.IsAddress() {
		return fmt.Errorf("azure: only A records can be deleted, got %s", record.Type)
	}

	set, err := p.client.GetA(ctx, p.resourceGroup, domain, record.Name)
	if err != nil {
		return fmt.Errorf("azure: reading record set %s: %w", record.Name, err)
	}

	var current []*armdns.ARecord
	if set.Properties != nil {
		current = set.Properties.ARecords
	}
	remaining, found := withoutAddress(current, record.Data)
	if !found {
		return microerror.Maskf(janitorerrors.NotFoundError, "azure: address %s not in record set %s", record.Data, record.Name)
	}

	if len(remaining) == 0 {
		p.log.Info("deleting record set", "zone", domain, "name", record.Name)
		if err := p.client.DeleteA(ctx, p.resourceGroup, domain, record.Name, set.Etag); err != nil {
			return fmt.Errorf("azure: deleting record set %s: %w", record.Name, err)
		}
		return nil
	}

	p.log.Info("removing address from record set", "zone", domain, "name", record.Name, "address", record.Data, "remaining", len(remaining))
	set.Properties.ARecords = remaining
	if err := p.client.UpdateA(ctx, p.resourceGroup, domain, record.Name, set); err != nil {
		return fmt.Errorf("azure: updating record set %s: %w", record.Name, err)
	}
	return nil
}

// recordType turns "Microsoft.Network/dnszones/A" into "A".
func recordType(armType *string) string {
	if armType == nil {
		return ""
	}
	t := *armType
	if i := strings.LastIndex(t, "/"); i >= 0 {
		t = t[i+1:]
	}
	return strings.ToUpper(t)
}

func recordsFromSet(set *armdns.RecordSet) []dns.Record {
	if set == nil || set.Name == nil {
		return nil
	}
	name := *set.Name
	typ := recordType(set.Type)

	var ttl int
	if set.Properties != nil && set.Properties.TTL != nil {
		ttl = int(*set.Properties.TTL)
	}

	if typ != dns.TypeA || set.Properties == nil {
		return []dns.Record{{ID: name + "/" + typ, Type: typ, Name: name, TTL: ttl}}
	}

	var out []dns.Record
	for _, a := range set.Properties.ARecords {
		if a == nil || a.IPv4Address == nil {
			continue
		}
		out = append(out, dns.Record{
			ID:   name + "/" + *a.IPv4Address,
			Type: dns.TypeA,
			Name: name,
			Data: *a.IPv4Address,
			TTL:  ttl,
		})
	}
	return out
}

func withoutAddress(records []*armdns.ARecord, address string) ([]*armdns.ARecord, bool) {
	var out []*armdns.ARecord
	found := false
	for _, a := range records {
		if a != nil && a.IPv4Address != nil && *a.IPv4Address == address {
			found = true
			continue
		}
		out = append(out, a)
	}
	return out, found
}
