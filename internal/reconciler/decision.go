package reconciler

// Decision is what happened to one address record.
type Decision int

const (
	// Skip: the address belongs to a known server.
	Skip Decision = iota
	// ProbeLive: unknown address that answered the probe, kept.
	ProbeLive
	// ProbeDeadDeleted: unknown address with no answer, delete issued.
	ProbeDeadDeleted
	// ProbeDeadKept: as ProbeDeadDeleted, but the delete was suppressed by dry run.
	ProbeDeadKept
)

func (d Decision) String() string {
	switch d {
	case Skip:
		return "skip"
	case ProbeLive:
		return "probe-live"
	case ProbeDeadDeleted:
		return "probe-dead-deleted"
	case ProbeDeadKept:
		return "probe-dead-kept"
	}
	return "unknown"
}
