package model

import "time"

// NetScoreReport is the aggregate result of scoring one repository.
// Signals are always in AllSignals order. A report is never mutated after construction.
type NetScoreReport struct {
	Repository RepositoryReference
	NetScore   float64
	Latency    time.Duration
	Signals    []SignalResult
	CreatedAt  time.Time
}

// LatencyMs returns the fan-out latency in milliseconds.
func (r NetScoreReport) LatencyMs() float64 {
	return durationMs(r.Latency)
}

// Signal returns the result for the named signal and whether it was present.
func (r NetScoreReport) Signal(name SignalName) (SignalResult, bool) {
	for _, s := range r.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return SignalResult{}, false
}

// StoredReport is a persisted NetScoreReport with its storage identifier.
type StoredReport struct {
	ID     string
	Report NetScoreReport
}
