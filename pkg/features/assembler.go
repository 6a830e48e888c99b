package features

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Encoder maps a categorical field's labels to integer codes and back.
// Implementations are immutable and safe for concurrent reads.
type Encoder interface {
	Code(label string) (int, bool)
	Label(code int) (string, bool)
	Classes() []string
}

// ErrEncoderMissing means a categorical value arrived for a field the bundle
// has no encoder for.
var ErrEncoderMissing = errors.New("no encoder configured")

var (
	errCountryRequired    = errors.New("country is required by this model")
	errCountryUnsupported = errors.New("this model does not use country")
)

// UnknownCategoryError is returned when a label is outside the encoder vocabulary.
type UnknownCategoryError struct {
	Field string
	Label string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Label)
}

// SchemaMismatchError reports the difference between the assembled columns
// and the model's column order.
type SchemaMismatchError struct {
	Missing []string
	Extra   []string
}

func (e *SchemaMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %q", e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected %q", e.Extra))
	}
	return "feature schema mismatch: " + strings.Join(parts, ", ")
}

// Record is a single model-ready row. Its columns always equal the schema
// it was assembled against.
type Record struct {
	columns []string
	values  []float64
}

func (r Record) Columns() []string {
	return append([]string(nil), r.columns...)
}

func (r Record) Values() []float64 {
	return append([]float64(nil), r.values...)
}

func (r Record) Len() int {
	return len(r.columns)
}

func (r Record) Value(column string) (float64, bool) {
	for i, col := range r.columns {
		if col == column {
			return r.values[i], true
		}
	}
	return 0, false
}

// Map returns the record keyed by column, for logging and persistence.
func (r Record) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r.columns))
	for i, col := range r.columns {
		out[col] = r.values[i]
	}
	return out
}

// Assemble encodes the categorical inputs, merges them with the numeric
// inputs under the model's column names and orders the result by schema.
func Assemble(raw RawInputs, encoders map[string]Encoder, schema Schema) (Record, error) {
	merged := map[string]float64{
		ColumnAdultMortality:       raw.AdultMortality,
		ColumnAlcohol:              raw.AlcoholConsumption,
		ColumnHealthExpenditurePct: raw.HealthExpenditurePct,
		ColumnBMI:                  raw.BMI,
		ColumnUnderFiveDeaths:      float64(raw.UnderFiveDeaths),
		ColumnGovHealthSpending:    raw.GovHealthSpending,
		ColumnHIVAIDS:              raw.HIVAIDSDeaths,
		ColumnGDP:                  raw.GDPPerCapita,
		ColumnIncomeComposition:    raw.IncomeComposition,
		ColumnSchooling:            raw.Schooling,
		ColumnImmunization:         raw.Immunization,
		ColumnThinness:             raw.ThinnessPrevalence,
	}

	categoricals := map[string]string{FieldStatus: raw.Status}
	_, hasCountry := encoders[FieldCountry]
	switch {
	case hasCountry && raw.Country == "":
		return Record{}, NewValidationError("country", errCountryRequired)
	case !hasCountry && raw.Country != "":
		return Record{}, NewValidationError("country", errCountryUnsupported)
	case hasCountry:
		categoricals[FieldCountry] = raw.Country
	}
	for _, field := range []string{FieldStatus, FieldCountry} {
		label, ok := categoricals[field]
		if !ok {
			continue
		}
		code, err := encode(encoders, field, label)
		if err != nil {
			return Record{}, err
		}
		column, _ := CategoricalColumn(field)
		merged[column] = float64(code)
	}

	if err := matchSchema(merged, schema); err != nil {
		return Record{}, err
	}

	record := Record{
		columns: make([]string, len(schema)),
		values:  make([]float64, len(schema)),
	}
	for i, col := range schema {
		record.columns[i] = col
		record.values[i] = merged[col]
	}
	return record, nil
}

func encode(encoders map[string]Encoder, field, label string) (int, error) {
	enc, ok := encoders[field]
	if !ok || enc == nil {
		return 0, fmt.Errorf("%w for %s", ErrEncoderMissing, field)
	}
	code, ok := enc.Code(label)
	if !ok {
		return 0, &UnknownCategoryError{Field: field, Label: label}
	}
	return code, nil
}

func matchSchema(merged map[string]float64, schema Schema) error {
	var mismatch SchemaMismatchError
	inSchema := make(map[string]struct{}, len(schema))
	for _, col := range schema {
		inSchema[col] = struct{}{}
		if _, ok := merged[col]; !ok {
			mismatch.Missing = append(mismatch.Missing, col)
		}
	}
	for col := range merged {
		if _, ok := inSchema[col]; !ok {
			mismatch.Extra = append(mismatch.Extra, col)
		}
	}
	if len(mismatch.Missing) == 0 && len(mismatch.Extra) == 0 {
		return nil
	}
	sort.Strings(mismatch.Extra)
	return &mismatch
}

// Decode maps an encoded categorical column in record back to its label.
func Decode(record Record, encoders map[string]Encoder, field string) (string, error) {
	column, ok := CategoricalColumn(field)
	if !ok {
		return "", fmt.Errorf("%s is not categorical", field)
	}
	value, ok := record.Value(column)
	if !ok {
		return "", fmt.Errorf("record has no %s column", column)
	}
	enc, ok := encoders[field]
	if !ok || enc == nil {
		return "", fmt.Errorf("%w for %s", ErrEncoderMissing, field)
	}
	label, ok := enc.Label(int(value))
	if !ok {
		return "", fmt.Errorf("code %d outside %s vocabulary", int(value), field)
	}
	return label, nil
}
