package classify

// Severity is the risk tier of a classified change, ordered
// NOTICE < WARNING < FAILURE.
type Severity string

const (
	Notice  Severity = "NOTICE"
	Warning Severity = "WARNING"
	Failure Severity = "FAILURE"
)

// Rank orders severities for max aggregation.
func (s Severity) Rank() int {
	switch s {
	case Notice:
		return 0
	case Warning:
		return 1
	case Failure:
		return 2
	}
	return -1
}

// Max returns the higher of two severities.
func Max(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
