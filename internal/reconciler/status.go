package reconciler

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/dns"
)

// StatusPrinter writes the human-readable audit lines of a run, one per
// decision, to out (stdout in the binary). Structured logs go elsewhere.
type StatusPrinter struct {
	out io.Writer

	skip   *color.Color
	check  *color.Color
	live   *color.Color
	del    *color.Color
	errTag *color.Color
	dryRun *color.Color
}

// NewStatusPrinter returns a printer writing to out. With noColor set the
// tags are printed without escape sequences regardless of the terminal.
func NewStatusPrinter(out io.Writer, noColor bool) *StatusPrinter {
	p := &StatusPrinter{
		out:    out,
		skip:   color.New(color.FgHiBlack),
		check:  color.New(color.FgCyan),
		live:   color.New(color.FgGreen),
		del:    color.New(color.FgRed, color.Bold),
		errTag: color.New(color.FgRed),
		dryRun: color.New(color.FgYellow),
	}
	if noColor {
		for _, c := range []*color.Color{p.skip, p.check, p.live, p.del, p.errTag, p.dryRun} {
			c.DisableColor()
		}
	}
	return p
}

// ServerIPs prints the inventory line, "None" when it is empty.
func (p *StatusPrinter) ServerIPs(ips sets.Set[string]) {
	list := "None"
	if ips.Len() > 0 {
		list = strings.Join(sets.List(ips), ", ")
	}
	fmt.Fprintf(p.out, "Found server IPs: %s\n", list)
}

func (p *StatusPrinter) Skip(r dns.Record) {
	p.line(p.skip, "SKIP", "DNS record (ID: %s) IP %s matches a server IP.", r.ID, r.Data)
}

func (p *StatusPrinter) Check(r dns.Record) {
	p.line(p.check, "CHECK", "DNS record (ID: %s) IP %s does not match any server IP. Probing...", r.ID, r.Data)
}

func (p *StatusPrinter) Live(r dns.Record) {
	p.line(p.live, "LIVE", "IP %s responded to probe.", r.Data)
}

func (p *StatusPrinter) Delete(r dns.Record) {
	p.line(p.del, "DELETE", "IP %s did not respond to probe. Deleting DNS record (ID: %s).", r.Data, r.ID)
}

func (p *StatusPrinter) DryRun(r dns.Record) {
	p.line(p.dryRun, "DRY-RUN", "IP %s did not respond to probe. Would delete DNS record (ID: %s).", r.Data, r.ID)
}

func (p *StatusPrinter) DeleteFailed(r dns.Record, err error) {
	p.line(p.errTag, "ERROR", "Error deleting record %s: %v", r.ID, err)
}

func (p *StatusPrinter) Summary(s Summary) {
	fmt.Fprintf(p.out, "Checked %d address records: %d skipped, %d live, %d deleted, %d kept by dry run, %d failed.\n",
		s.Checked, s.Skipped, s.Live, s.Deleted, s.DryRun, s.Failed)
}

func (p *StatusPrinter) line(c *color.Color, tag, format string, args ...interface{}) {
	c.Fprintf(p.out, "[%s]", tag)
	fmt.Fprintf(p.out, " "+format+"\n", args...)
}
