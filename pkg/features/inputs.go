package features

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	StatusDeveloped  = "Developed"
	StatusDeveloping = "Developing"
)

// RawInputs holds one country's indicators as entered on the form.
type RawInputs struct {
	Country              string  `json:"country,omitempty"`
	Status               string  `json:"status"`
	Schooling            float64 `json:"schooling"`
	IncomeComposition    float64 `json:"income_composition"`
	GDPPerCapita         float64 `json:"gdp_per_capita"`
	Immunization         float64 `json:"immunization"`
	AlcoholConsumption   float64 `json:"alcohol_consumption"`
	AdultMortality       float64 `json:"adult_mortality"`
	HIVAIDSDeaths        float64 `json:"hiv_aids_deaths"`
	BMI                  float64 `json:"bmi"`
	HealthExpenditurePct float64 `json:"health_expenditure_pct"`
	GovHealthSpending    float64 `json:"gov_health_spending"`
	UnderFiveDeaths      int     `json:"under_five_deaths"`
	ThinnessPrevalence   float64 `json:"thinness_prevalence"`
}

// DefaultInputs returns the values the form starts with.
func DefaultInputs() RawInputs {
	return RawInputs{
		Status:               StatusDeveloped,
		Schooling:            12.0,
		IncomeComposition:    0.5,
		GDPPerCapita:         5000.0,
		Immunization:         95.0,
		AlcoholConsumption:   5.0,
		AdultMortality:       150.0,
		HIVAIDSDeaths:        0.1,
		BMI:                  25.0,
		HealthExpenditurePct: 5.0,
		GovHealthSpending:    6.0,
		UnderFiveDeaths:      20,
		ThinnessPrevalence:   5.0,
	}
}

// Bound is the accepted range of a numeric input. Max is ignored when Unbounded.
type Bound struct {
	Min       float64
	Max       float64
	Unbounded bool
}

// Bounds are keyed by the JSON/form name of each numeric input.
var Bounds = map[string]Bound{
	"schooling":              {Min: 0, Max: 20},
	"income_composition":     {Min: 0, Max: 1},
	"gdp_per_capita":         {Min: 0, Unbounded: true},
	"immunization":           {Min: 0, Max: 100},
	"alcohol_consumption":    {Min: 0, Max: 20},
	"adult_mortality":        {Min: 1, Max: 1000},
	"hiv_aids_deaths":        {Min: 0, Unbounded: true},
	"bmi":                    {Min: 1, Max: 70},
	"health_expenditure_pct": {Min: 0, Max: 30},
	"gov_health_spending":    {Min: 0, Max: 20},
	"under_five_deaths":      {Min: 0, Max: 1000},
	"thinness_prevalence":    {Min: 0, Max: 30},
}

var (
	errOutOfRange    = errors.New("value out of range")
	errNotFinite     = errors.New("value is not a finite number")
	errStatusMissing = errors.New("status required")
)

type ValidationError struct {
	Field  string
	reason error
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.reason.Error())
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Numeric lists the numeric inputs keyed by their JSON/form name.
func (r RawInputs) Numeric() map[string]float64 {
	return map[string]float64{
		"schooling":              r.Schooling,
		"income_composition":     r.IncomeComposition,
		"gdp_per_capita":         r.GDPPerCapita,
		"immunization":           r.Immunization,
		"alcohol_consumption":    r.AlcoholConsumption,
		"adult_mortality":        r.AdultMortality,
		"hiv_aids_deaths":        r.HIVAIDSDeaths,
		"bmi":                    r.BMI,
		"health_expenditure_pct": r.HealthExpenditurePct,
		"gov_health_spending":    r.GovHealthSpending,
		"under_five_deaths":      float64(r.UnderFiveDeaths),
		"thinness_prevalence":    r.ThinnessPrevalence,
	}
}

// Validate checks every numeric input against Bounds. Category labels are
// checked later against the encoder vocabulary.
func (r RawInputs) Validate() error {
	if strings.TrimSpace(r.Status) == "" {
		return ValidationError{Field: "status", reason: errStatusMissing}
	}
	values := r.Numeric()
	for _, name := range inputOrder {
		value := values[name]
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return ValidationError{Field: name, reason: errNotFinite}
		}
		bound := Bounds[name]
		if value < bound.Min || (!bound.Unbounded && value > bound.Max) {
			return ValidationError{Field: name, reason: fmt.Errorf("%g not in %s: %w", value, bound, errOutOfRange)}
		}
	}
	return nil
}

func (b Bound) String() string {
	if b.Unbounded {
		return fmt.Sprintf("[%g, +inf)", b.Min)
	}
	return fmt.Sprintf("[%g, %g]", b.Min, b.Max)
}

// inputOrder fixes the order in which validation reports the first failure.
var inputOrder = []string{
	"schooling",
	"income_composition",
	"gdp_per_capita",
	"immunization",
	"alcohol_consumption",
	"adult_mortality",
	"hiv_aids_deaths",
	"bmi",
	"health_expenditure_pct",
	"gov_health_spending",
	"under_five_deaths",
	"thinness_prevalence",
}

// NewValidationError reports an invalid value for a named input.
func NewValidationError(field string, reason error) ValidationError {
	return ValidationError{Field: field, reason: reason}
}

// InputNames lists the numeric inputs in form order.
func InputNames() []string {
	return append([]string(nil), inputOrder...)
}

// SetNumeric assigns a numeric input by its JSON/form name.
func (r *RawInputs) SetNumeric(name string, value float64) error {
	switch name {
	case "schooling":
		r.Schooling = value
	case "income_composition":
		r.IncomeComposition = value
	case "gdp_per_capita":
		r.GDPPerCapita = value
	case "immunization":
		r.Immunization = value
	case "alcohol_consumption":
		r.AlcoholConsumption = value
	case "adult_mortality":
		r.AdultMortality = value
	case "hiv_aids_deaths":
		r.HIVAIDSDeaths = value
	case "bmi":
		r.BMI = value
	case "health_expenditure_pct":
		r.HealthExpenditurePct = value
	case "gov_health_spending":
		r.GovHealthSpending = value
	case "under_five_deaths":
		if value != math.Trunc(value) {
			return ValidationError{Field: name, reason: errors.New("must be a whole number")}
		}
		r.UnderFiveDeaths = int(value)
	case "thinness_prevalence":
		r.ThinnessPrevalence = value
	default:
		return fmt.Errorf("unknown input %q", name)
	}
	return nil
}
