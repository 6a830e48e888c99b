package linear

import (
	"errors"
	"fmt"
	"math"
)

type Weights struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

var ErrNoCoefficients = errors.New("weights have no coefficients")

// Validate checks the weights can score samples of the given width.
func (w Weights) Validate(featureCount int) error {
	if len(w.Coefficients) == 0 {
		return ErrNoCoefficients
	}
	if len(w.Coefficients) != featureCount {
		return fmt.Errorf("expected %d coefficients, got %d", featureCount, len(w.Coefficients))
	}
	if !finite(w.Bias) {
		return errors.New("bias is not finite")
	}
	for i, c := range w.Coefficients {
		if !finite(c) {
			return fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	return nil
}

// Predict returns bias + w·x. The sample must have one value per coefficient.
func Predict(weights Weights, sample []float64) (float64, error) {
	if len(sample) != len(weights.Coefficients) {
		return 0, fmt.Errorf("sample has %d values, weights expect %d", len(sample), len(weights.Coefficients))
	}
	return dot(weights.Coefficients, sample) + weights.Bias, nil
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
