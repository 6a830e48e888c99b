package serving

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/synaptica-ai/life-expectancy/pkg/features"
	"github.com/synaptica-ai/life-expectancy/pkg/observability/metrics"
)

// ScoringError wraps any failure of the model call. No partial result is
// returned alongside it.
type ScoringError struct {
	Err error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failed: %v", e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

const (
	msgPredictionFailed = "Prediction failed."
	msgConfiguration    = "Model configuration error."
)

// failure maps a pipeline error to an HTTP status, a metrics kind and the
// message shown to the user.
type failure struct {
	status  int
	kind    string
	message string
	field   string
}

func describe(err error) failure {
	var (
		ve       features.ValidationError
		unknown  *features.UnknownCategoryError
		mismatch *features.SchemaMismatchError
		scoring  *ScoringError
	)
	switch {
	case errors.As(err, &ve):
		return failure{status: http.StatusBadRequest, kind: metrics.FailureValidation, message: ve.Error(), field: ve.Field}
	case errors.As(err, &unknown):
		return failure{status: http.StatusBadRequest, kind: metrics.FailureUnknownCategory, message: unknown.Error(), field: strings.ToLower(unknown.Field)}
	case errors.As(err, &mismatch), errors.Is(err, features.ErrEncoderMissing):
		return failure{status: http.StatusInternalServerError, kind: metrics.FailureConfiguration, message: msgConfiguration}
	case errors.As(err, &scoring):
		return failure{status: http.StatusBadGateway, kind: metrics.FailureScoring, message: msgPredictionFailed}
	default:
		return failure{status: http.StatusInternalServerError, kind: metrics.FailureScoring, message: msgPredictionFailed}
	}
}
