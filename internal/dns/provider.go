package dns

import "context"

// TypeA is the only record type the janitor acts on.
const TypeA = "A"

// Record is a provider-independent view of one DNS record.
type Record struct {
	ID   string // provider identifier, used for deletion and audit lines
	Type string // "A", "AAAA", "CNAME", ...
	Name string // relative name as the provider reports it, "@" for the apex
	Data string // IPv4 address when Type is "A"
	TTL  int
}

// IsAddress reports whether the record is an IPv4 address record.
func (r Record) IsAddress() bool {
	return r.Type == TypeA
}

// Provider is the interface that DNS providers must implement.
type Provider interface {
	// Records returns every record of domain in provider order.
	Records(ctx context.Context, domain string) ([]Record, error)
	// Delete removes a single record previously returned by Records.
	Delete(ctx context.Context, domain string, record Record) error
}
