package dns

import (
	"strings"
)

// FQDN joins a relative record name and its zone.
// e.g. ("www", "example.com") → "www.example.com"
// e.g. ("@", "example.com") → "example.com"
func FQDN(name, zone string) string {
	zone = strings.TrimSuffix(zone, ".")
	name = strings.TrimSuffix(name, ".")
	switch {
	case name == "" || name == "@":
		return zone
	case zone == "", strings.EqualFold(name, zone), strings.HasSuffix(strings.ToLower(name), "."+strings.ToLower(zone)):
		return name
	}
	return name + "." + zone
}
