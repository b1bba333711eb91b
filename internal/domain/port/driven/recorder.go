package driven

import (
	"time"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
)

// ScoreRecorder receives scoring observations for metrics export.
type ScoreRecorder interface {
	ObserveSignal(result model.SignalResult)
	ObserveReport(netScore float64, latency time.Duration)
	ObserveQuotaExhausted(signal model.SignalName)
}
