// Package bundle loads the trained model, its categorical encoders and the
// column order it was fitted with.
package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/synaptica-ai/life-expectancy/pkg/features"
	"github.com/synaptica-ai/life-expectancy/pkg/serving/predictor"
)

// Model scores one assembled record.
type Model interface {
	Predict(ctx context.Context, record features.Record) (float64, error)
}

// ModelBundle is built once at startup and only read afterwards.
type ModelBundle struct {
	Model    Model
	Encoders map[string]features.Encoder
	Columns  features.Schema
}

// LoadError means the bundle could not be read or is inconsistent. The
// service cannot start without a bundle.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model bundle %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type encoderFile struct {
	Classes []string `json:"classes"`
}

type bundleFile struct {
	Model    predictor.Artifact     `json:"model"`
	Encoders map[string]encoderFile `json:"encoders"`
	Columns  []string               `json:"columns"`
}

// Load reads a JSON bundle from path and validates it. The bundle must
// carry linear weights for the local model.
func Load(path string) (*ModelBundle, error) {
	return LoadWith(path, nil)
}

// LoadWith reads a bundle that scores with model instead of its own weights.
// The weights section may then be omitted; feature names, encoders and
// columns are still required. A nil model behaves like Load.
func LoadWith(path string, model Model) (*ModelBundle, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	b, err := ParseWith(content, model)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return b, nil
}

// Parse decodes and validates bundle content.
func Parse(content []byte) (*ModelBundle, error) {
	return ParseWith(content, nil)
}

// ParseWith decodes bundle content, scoring with model when it is set.
func ParseWith(content []byte, model Model) (*ModelBundle, error) {
	var file bundleFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	encoders := make(map[string]features.Encoder, len(file.Encoders))
	for field, enc := range file.Encoders {
		if _, ok := features.CategoricalColumn(field); !ok {
			return nil, fmt.Errorf("encoder for unknown field %q", field)
		}
		le, err := features.NewLabelEncoder(enc.Classes)
		if err != nil {
			return nil, fmt.Errorf("encoder %s: %w", field, err)
		}
		encoders[field] = le
	}

	columns := features.Schema(file.Columns)
	featureNames := features.Schema(file.Model.FeatureNames)
	if model == nil {
		local, err := predictor.NewLinear(file.Model)
		if err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
		model = local
		featureNames = local.FeatureNames()
	}
	if !columns.Equal(featureNames) {
		return nil, fmt.Errorf("model feature names %q do not match columns %q", []string(featureNames), file.Columns)
	}
	return New(model, encoders, columns)
}

// New validates the parts and assembles an immutable bundle.
func New(model Model, encoders map[string]features.Encoder, columns features.Schema) (*ModelBundle, error) {
	if model == nil {
		return nil, fmt.Errorf("model required")
	}
	if err := columns.Validate(); err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	for _, field := range []string{features.FieldStatus, features.FieldCountry} {
		column, _ := features.CategoricalColumn(field)
		_, hasEncoder := encoders[field]
		switch {
		case columns.Contains(column) && !hasEncoder:
			return nil, fmt.Errorf("column %q requires a %s encoder", column, field)
		case !columns.Contains(column) && hasEncoder:
			return nil, fmt.Errorf("%s encoder present but column %q is not in the schema", field, column)
		}
	}
	if _, ok := encoders[features.FieldStatus]; !ok {
		return nil, fmt.Errorf("a %s encoder is required", features.FieldStatus)
	}

	copied := make(map[string]features.Encoder, len(encoders))
	for field, enc := range encoders {
		copied[field] = enc
	}
	return &ModelBundle{
		Model:    model,
		Encoders: copied,
		Columns:  append(features.Schema(nil), columns...),
	}, nil
}

// HasCountry reports whether the bundle is the two-encoder variant.
func (b *ModelBundle) HasCountry() bool {
	_, ok := b.Encoders[features.FieldCountry]
	return ok
}

// Classes returns the vocabulary of a categorical field, nil if absent.
func (b *ModelBundle) Classes(field string) []string {
	enc, ok := b.Encoders[field]
	if !ok {
		return nil
	}
	return enc.Classes()
}

// Assemble builds a record for this bundle's encoders and column order.
func (b *ModelBundle) Assemble(raw features.RawInputs) (features.Record, error) {
	return features.Assemble(raw, b.Encoders, b.Columns)
}
