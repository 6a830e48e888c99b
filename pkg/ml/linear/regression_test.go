package linear

import (
	"math"
	"testing"
)

func TestPredict(t *testing.T) {
	w := Weights{Bias: 50, Coefficients: []float64{0.5, -0.1}}
	got, err := Predict(w, []float64{12, 150})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-41) > 1e-9 {
		t.Fatalf("expected 41, got %v", got)
	}
}

func TestPredictWidthMismatch(t *testing.T) {
	w := Weights{Coefficients: []float64{1, 2}}
	if _, err := Predict(w, []float64{1}); err == nil {
		t.Fatal("expected error for short sample")
	}
}

func TestValidate(t *testing.T) {
	if err := (Weights{}).Validate(0); err != ErrNoCoefficients {
		t.Fatalf("expected ErrNoCoefficients, got %v", err)
	}
	if err := (Weights{Coefficients: []float64{1}}).Validate(2); err == nil {
		t.Fatal("expected width error")
	}
	if err := (Weights{Coefficients: []float64{math.NaN()}}).Validate(1); err == nil {
		t.Fatal("expected non-finite error")
	}
	if err := (Weights{Bias: 1, Coefficients: []float64{1, 2}}).Validate(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
