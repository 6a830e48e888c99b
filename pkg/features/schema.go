package features

import (
	"errors"
	"fmt"
)

// Column names the model was trained on. The surrounding whitespace is part
// of the name: these are join keys against the bundle's column order.
const (
	ColumnAdultMortality       = "Adult Mortality"
	ColumnAlcohol              = "Alcohol"
	ColumnHealthExpenditurePct = "percentage expenditure"
	ColumnBMI                  = " BMI "
	ColumnUnderFiveDeaths      = "under-five deaths "
	ColumnGovHealthSpending    = "Total expenditure"
	ColumnHIVAIDS              = " HIV/AIDS"
	ColumnGDP                  = "GDP"
	ColumnIncomeComposition    = "Income composition of resources"
	ColumnSchooling            = "Schooling"
	ColumnStatusEncoded        = "Status_encoded"
	ColumnImmunization         = "Immunization"
	ColumnThinness             = "thinness_mean"
	ColumnCountryEncoded       = "Country_encoded"
)

// Categorical fields and the column their code lands in.
const (
	FieldStatus  = "Status"
	FieldCountry = "Country"
)

var categoricalColumns = map[string]string{
	FieldStatus:  ColumnStatusEncoded,
	FieldCountry: ColumnCountryEncoded,
}

// CategoricalColumn returns the encoded column name for a categorical field.
func CategoricalColumn(field string) (string, bool) {
	col, ok := categoricalColumns[field]
	return col, ok
}

// Schema is the ordered column list the model expects (columns_order).
type Schema []string

// DefaultSchema is the single-encoder column order the bundled model was
// trained with.
func DefaultSchema() Schema {
	return Schema{
		ColumnAdultMortality,
		ColumnAlcohol,
		ColumnHealthExpenditurePct,
		ColumnBMI,
		ColumnUnderFiveDeaths,
		ColumnGovHealthSpending,
		ColumnHIVAIDS,
		ColumnGDP,
		ColumnIncomeComposition,
		ColumnSchooling,
		ColumnStatusEncoded,
		ColumnImmunization,
		ColumnThinness,
	}
}

var knownColumns = func() map[string]struct{} {
	known := make(map[string]struct{})
	for _, col := range DefaultSchema() {
		known[col] = struct{}{}
	}
	known[ColumnCountryEncoded] = struct{}{}
	return known
}()

var errEmptySchema = errors.New("schema has no columns")

// Validate rejects empty schemas, duplicate columns and columns the
// assembler cannot produce.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return errEmptySchema
	}
	seen := make(map[string]struct{}, len(s))
	for _, col := range s {
		if _, dup := seen[col]; dup {
			return fmt.Errorf("duplicate column %q", col)
		}
		seen[col] = struct{}{}
		if _, ok := knownColumns[col]; !ok {
			return fmt.Errorf("unknown column %q", col)
		}
	}
	return nil
}

func (s Schema) Contains(col string) bool {
	for _, c := range s {
		if c == col {
			return true
		}
	}
	return false
}

// Equal is an order-sensitive comparison.
func (s Schema) Equal(other []string) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}
