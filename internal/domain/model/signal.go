package model

import "time"

// SignalName identifies one of the seven quality signals.
type SignalName string

const (
	SignalRampUp               SignalName = "ramp_up"
	SignalBusFactor            SignalName = "bus_factor"
	SignalCorrectness          SignalName = "correctness"
	SignalResponsiveMaintainer SignalName = "responsive_maintainer"
	SignalLicense              SignalName = "license"
	SignalPinningPractice      SignalName = "pinning_practice"
	SignalCodeReviewCoverage   SignalName = "code_review_coverage"
)

// FailedScore is the sentinel score for a signal that could not be computed.
const FailedScore = -1.0

// AllSignals returns every signal in canonical report order.
func AllSignals() []SignalName {
	return []SignalName{
		SignalRampUp,
		SignalBusFactor,
		SignalCorrectness,
		SignalResponsiveMaintainer,
		SignalLicense,
		SignalPinningPractice,
		SignalCodeReviewCoverage,
	}
}

// IsValid reports whether n is one of the known signals.
func (n SignalName) IsValid() bool {
	for _, s := range AllSignals() {
		if s == n {
			return true
		}
	}
	return false
}

// SignalResult is the outcome of one signal evaluation.
// Score is FailedScore exactly when Failure is not FailureNone; otherwise it lies in [0,1].
type SignalResult struct {
	Name    SignalName
	Score   float64
	Latency time.Duration
	Failure FailureReason
}

// Failed reports whether the signal could not be computed.
func (r SignalResult) Failed() bool {
	return r.Failure != FailureNone
}

// LatencyMs returns the evaluation latency in milliseconds.
func (r SignalResult) LatencyMs() float64 {
	return durationMs(r.Latency)
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
