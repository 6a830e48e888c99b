package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/synaptica-ai/life-expectancy/pkg/stage"
)

// Failure kinds reported by the prediction pipeline.
const (
	FailureValidation      = "validation"
	FailureUnknownCategory = "unknown_category"
	FailureConfiguration   = "configuration"
	FailureScoring         = "scoring"
)

var (
	predictionsTotal   atomic.Int64
	assetsMissingTotal atomic.Int64
	latencyMicrosTotal atomic.Int64
	stageCounts        [4]atomic.Int64
	failureCounts      = map[string]*atomic.Int64{
		FailureValidation:      {},
		FailureUnknownCategory: {},
		FailureConfiguration:   {},
		FailureScoring:         {},
	}
	failureOrder = []string{FailureValidation, FailureUnknownCategory, FailureConfiguration, FailureScoring}
)

func ObservePrediction(st stage.LifeStage, latencyMicros int64) {
	predictionsTotal.Add(1)
	latencyMicrosTotal.Add(latencyMicros)
	if int(st) >= 0 && int(st) < len(stageCounts) {
		stageCounts[st].Add(1)
	}
}

func ObserveFailure(kind string) {
	if c, ok := failureCounts[kind]; ok {
		c.Add(1)
	}
}

func ObserveAssetMissing() {
	assetsMissingTotal.Add(1)
}

// Snapshot returns the current counters, used by tests and /metrics.
func Snapshot() map[string]int64 {
	out := map[string]int64{
		"predictions_total":    predictionsTotal.Load(),
		"assets_missing_total": assetsMissingTotal.Load(),
	}
	for _, st := range stage.All {
		out["stage_"+st.Illustration()] = stageCounts[st].Load()
	}
	for _, kind := range failureOrder {
		out["failure_"+kind] = failureCounts[kind].Load()
	}
	return out
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP life_expectancy_predictions_total Number of successful predictions.\n")
	fmt.Fprintf(w, "# TYPE life_expectancy_predictions_total counter\n")
	fmt.Fprintf(w, "life_expectancy_predictions_total %d\n", predictionsTotal.Load())

	fmt.Fprintf(w, "# HELP life_expectancy_prediction_latency_microseconds_total Cumulative pipeline latency of successful predictions.\n")
	fmt.Fprintf(w, "# TYPE life_expectancy_prediction_latency_microseconds_total counter\n")
	fmt.Fprintf(w, "life_expectancy_prediction_latency_microseconds_total %d\n", latencyMicrosTotal.Load())

	fmt.Fprintf(w, "# HELP life_expectancy_stage_total Predictions per health stage.\n")
	fmt.Fprintf(w, "# TYPE life_expectancy_stage_total counter\n")
	for _, st := range stage.All {
		fmt.Fprintf(w, "life_expectancy_stage_total{stage=%q} %d\n", st.Illustration(), stageCounts[st].Load())
	}

	fmt.Fprintf(w, "# HELP life_expectancy_failures_total Failed prediction requests by kind.\n")
	fmt.Fprintf(w, "# TYPE life_expectancy_failures_total counter\n")
	for _, kind := range failureOrder {
		fmt.Fprintf(w, "life_expectancy_failures_total{kind=%q} %d\n", kind, failureCounts[kind].Load())
	}

	fmt.Fprintf(w, "# HELP life_expectancy_assets_missing_total Results rendered without their stage illustration.\n")
	fmt.Fprintf(w, "# TYPE life_expectancy_assets_missing_total counter\n")
	fmt.Fprintf(w, "life_expectancy_assets_missing_total %d\n", assetsMissingTotal.Load())
}
