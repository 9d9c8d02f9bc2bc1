// Package providers imports all DNS provider and inventory source packages to
// trigger their init() registration.
package providers

import (
	_ "github.com/yuriy-kovalchuk/yk-dns-janitor/internal/digitalocean"
	_ "github.com/yuriy-kovalchuk/yk-dns-janitor/internal/dns/azure"
	_ "github.com/yuriy-kovalchuk/yk-dns-janitor/internal/dns/opnsense"
)
