// Package stage buckets a predicted life expectancy into health stages.
package stage

import (
	"fmt"
	"math"
)

type LifeStage int

const (
	Critical LifeStage = iota
	AtRisk
	Unhealthy
	Healthy
)

// Upper bounds, inclusive, of the first three stages.
const (
	CriticalMax  = 45.0
	AtRiskMax    = 55.0
	UnhealthyMax = 70.0
)

// All lists the stages in ascending order.
var All = []LifeStage{Critical, AtRisk, Unhealthy, Healthy}

// Classify maps a prediction to its stage. Each interval is closed on its
// upper end; anything at or below 45, including negative values, is Critical.
func Classify(prediction float64) LifeStage {
	switch {
	case prediction <= CriticalMax:
		return Critical
	case prediction <= AtRiskMax:
		return AtRisk
	case prediction <= UnhealthyMax:
		return Unhealthy
	default:
		return Healthy
	}
}

func (s LifeStage) String() string {
	switch s {
	case Critical:
		return "Critical"
	case AtRisk:
		return "AtRisk"
	case Unhealthy:
		return "Unhealthy"
	case Healthy:
		return "Healthy"
	}
	return fmt.Sprintf("LifeStage(%d)", int(s))
}

// Label is the text shown to the user.
func (s LifeStage) Label() string {
	switch s {
	case AtRisk:
		return "At Risk"
	case Critical, Unhealthy, Healthy:
		return s.String()
	}
	return ""
}

// Illustration is the asset key of the stage image.
func (s LifeStage) Illustration() string {
	switch s {
	case Critical:
		return "critical"
	case AtRisk:
		return "at_risk"
	case Unhealthy:
		return "unhealthy"
	case Healthy:
		return "healthy"
	}
	return ""
}

// Indicator is the colour the form uses next to the label.
func (s LifeStage) Indicator() string {
	switch s {
	case Critical:
		return "red"
	case AtRisk:
		return "orange"
	case Unhealthy:
		return "green"
	case Healthy:
		return "blue"
	}
	return ""
}

// Range describes the stage interval, e.g. "45 < years <= 55".
func (s LifeStage) Range() string {
	switch s {
	case Critical:
		return fmt.Sprintf("years <= %g", CriticalMax)
	case AtRisk:
		return fmt.Sprintf("%g < years <= %g", CriticalMax, AtRiskMax)
	case Unhealthy:
		return fmt.Sprintf("%g < years <= %g", AtRiskMax, UnhealthyMax)
	case Healthy:
		return fmt.Sprintf("years > %g", UnhealthyMax)
	}
	return ""
}

// RoundYears rounds half to even, so 68.5 shows as 68 and 69.5 as 70.
func RoundYears(prediction float64) int {
	return int(math.RoundToEven(prediction))
}

func Headline(years int) string {
	return fmt.Sprintf("Predicted Life Expectancy: %d years", years)
}
