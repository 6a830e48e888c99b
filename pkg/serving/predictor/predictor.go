package predictor

import (
	"context"
	"errors"
	"fmt"

	"github.com/synaptica-ai/life-expectancy/pkg/features"
	"github.com/synaptica-ai/life-expectancy/pkg/ml/linear"
)

// Artifact is the model section of a bundle file.
type Artifact struct {
	Type         string         `json:"type"`
	Algorithm    string         `json:"algorithm"`
	FeatureNames []string       `json:"feature_names"`
	Weights      linear.Weights `json:"weights"`
}

const (
	TypeRegression  = "regression"
	AlgorithmLinear = "linear"
)

var errMissingFeatureNames = errors.New("artifact missing feature names")

// Linear scores records with a linear regression fitted offline.
type Linear struct {
	featureNames features.Schema
	weights      linear.Weights
}

// NewLinear validates the artifact and builds a model from it.
func NewLinear(artifact Artifact) (*Linear, error) {
	if artifact.Type != "" && artifact.Type != TypeRegression {
		return nil, fmt.Errorf("unsupported model type %q", artifact.Type)
	}
	if artifact.Algorithm != "" && artifact.Algorithm != AlgorithmLinear {
		return nil, fmt.Errorf("unsupported algorithm %q", artifact.Algorithm)
	}
	if len(artifact.FeatureNames) == 0 {
		return nil, errMissingFeatureNames
	}
	if err := artifact.Weights.Validate(len(artifact.FeatureNames)); err != nil {
		return nil, err
	}
	names := append(features.Schema(nil), artifact.FeatureNames...)
	return &Linear{featureNames: names, weights: artifact.Weights}, nil
}

func (l *Linear) FeatureNames() features.Schema {
	return append(features.Schema(nil), l.featureNames...)
}

// Predict requires the record columns in the order the weights were fitted.
func (l *Linear) Predict(ctx context.Context, record features.Record) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !l.featureNames.Equal(record.Columns()) {
		return 0, fmt.Errorf("record columns %q do not match model features %q", record.Columns(), []string(l.featureNames))
	}
	return linear.Predict(l.weights, record.Values())
}
