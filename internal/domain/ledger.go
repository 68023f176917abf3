package domain

// ValidationStatus is the overall outcome of a run's validation.
type ValidationStatus string

const (
	ValidationPassed ValidationStatus = "PASSED"
	ValidationFailed ValidationStatus = "FAILED"
)

// Ledger is the run's accumulated validation findings. It is a value: Record
// returns a new Ledger and never alters the receiver, so a snapshot taken
// earlier in the run stays valid.
type Ledger struct {
	findings []Finding
}

// Record returns a ledger with findings appended after the existing ones.
func (l Ledger) Record(findings ...Finding) Ledger {
	next := make([]Finding, 0, len(l.findings)+len(findings))
	next = append(next, l.findings...)
	next = append(next, findings...)
	return Ledger{findings: next}
}

// TotalErrors is the number of findings recorded so far.
func (l Ledger) TotalErrors() int {
	return len(l.findings)
}

// Findings returns the findings in the order they were recorded.
func (l Ledger) Findings() []Finding {
	out := make([]Finding, len(l.findings))
	copy(out, l.findings)
	return out
}

// LedgerSummary is a point-in-time view of a Ledger, shaped for the external
// monitor.
type LedgerSummary struct {
	Status      ValidationStatus    `json:"validation_status"`
	TotalErrors int                 `json:"total_errors"`
	ErrorCounts map[FindingKind]int `json:"error_counts"`
	Findings    []Finding           `json:"details"`
}

// Summary counts findings per kind. Every known kind is present, zero or not.
func (l Ledger) Summary() LedgerSummary {
	counts := make(map[FindingKind]int, len(FindingKinds))
	for _, kind := range FindingKinds {
		counts[kind] = 0
	}
	for _, f := range l.findings {
		counts[f.Kind]++
	}

	status := ValidationPassed
	if len(l.findings) > 0 {
		status = ValidationFailed
	}

	return LedgerSummary{
		Status:      status,
		TotalErrors: len(l.findings),
		ErrorCounts: counts,
		Findings:    l.Findings(),
	}
}
