package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the current contents of Registry to a Prometheus Pushgateway,
// replacing the group identified by job and domain.
func Push(url, job, domain string) error {
	LastRun.SetToCurrentTime()

	err := push.New(url, job).
		Gatherer(Registry).
		Grouping("domain", domain).
		Push()
	if err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
