package application

import (
	"fmt"
	"math"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
)

// weightSumTolerance bounds floating-point drift when validating a weight table.
const weightSumTolerance = 1e-9

// Weights maps each signal to its share of the net score. A valid table
// covers all seven signals with non-negative weights summing to 1.
type Weights map[model.SignalName]float64

// DefaultWeights is the public weight table used unless configured otherwise.
var DefaultWeights = Weights{
	model.SignalRampUp:               0.10,
	model.SignalBusFactor:            0.25,
	model.SignalCorrectness:          0.15,
	model.SignalResponsiveMaintainer: 0.20,
	model.SignalLicense:              0.10,
	model.SignalPinningPractice:      0.10,
	model.SignalCodeReviewCoverage:   0.10,
}

// Validate checks that the table covers every signal exactly and sums to 1.
func (w Weights) Validate() error {
	var sum float64
	for _, name := range model.AllSignals() {
		v, ok := w[name]
		if !ok {
			return fmt.Errorf("missing weight for signal %q", name)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight for signal %q must be a non-negative number, got %v", name, v)
		}
		sum += v
	}

	for name := range w {
		if !name.IsValid() {
			return fmt.Errorf("weight for unknown signal %q", name)
		}
	}

	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1, got %v", sum)
	}
	return nil
}

// Clone returns a copy that is safe to modify.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// FailurePolicy decides how a failed signal affects the weighted sum.
type FailurePolicy string

const (
	// FailurePolicyZero counts a failed signal as 0 and leaves weights alone.
	FailurePolicyZero FailurePolicy = "zero"
	// FailurePolicyRenormalize drops failed signals and rescales the rest to sum to 1.
	FailurePolicyRenormalize FailurePolicy = "renormalize"
)

// ParseFailurePolicy validates a configured policy name.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case FailurePolicyZero, FailurePolicyRenormalize:
		return p, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q: expected %q or %q", s, FailurePolicyZero, FailurePolicyRenormalize)
	}
}

// Aggregator folds signal results into a net score.
type Aggregator struct {
	weights Weights
	policy  FailurePolicy
}

// NewAggregator creates an Aggregator after validating the weight table.
func NewAggregator(weights Weights, policy FailurePolicy) (*Aggregator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if _, err := ParseFailurePolicy(string(policy)); err != nil {
		return nil, err
	}
	return &Aggregator{weights: weights.Clone(), policy: policy}, nil
}

// Weights returns a copy of the weight table in use.
func (a *Aggregator) Weights() Weights {
	return a.weights.Clone()
}

// NetScore computes Σ w_i·s_i. When every signal failed the result is the
// FailedScore sentinel, never 0, so total failure is distinguishable from a
// legitimately low score.
func (a *Aggregator) NetScore(results []model.SignalResult) float64 {
	var sum, liveWeight float64
	live := 0

	for _, r := range results {
		if r.Failed() {
			continue
		}
		w := a.weights[r.Name]
		sum += w * r.Score
		liveWeight += w
		live++
	}

	if live == 0 {
		return model.FailedScore
	}

	if a.policy == FailurePolicyRenormalize {
		if liveWeight == 0 {
			return 0
		}
		sum /= liveWeight
	}

	return math.Max(0, math.Min(1, sum))
}
