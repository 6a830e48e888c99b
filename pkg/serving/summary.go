package serving

import (
	"strconv"
	"strings"

	"github.com/synaptica-ai/life-expectancy/pkg/common/models"
	"github.com/synaptica-ai/life-expectancy/pkg/features"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Summarize lists the human-readable subset of the inputs shown under a result.
func Summarize(raw features.RawInputs) []models.SummaryRow {
	rows := []models.SummaryRow{
		{Factor: "Schooling Years", Selection: decimal(raw.Schooling) + " years"},
		{Factor: "HDI (Income Comp)", Selection: decimal(raw.IncomeComposition)},
		{Factor: "GDP per Capita", Selection: printer.Sprintf("$%.2f", raw.GDPPerCapita)},
		{Factor: "Immunization %", Selection: decimal(raw.Immunization) + "%"},
		{Factor: "Alcohol Consumption", Selection: decimal(raw.AlcoholConsumption)},
		{Factor: "Adult Mortality", Selection: decimal(raw.AdultMortality)},
		{Factor: "HIV/AIDS Deaths", Selection: decimal(raw.HIVAIDSDeaths)},
		{Factor: "BMI", Selection: decimal(raw.BMI)},
		{Factor: "Country Status", Selection: raw.Status},
	}
	if raw.Country != "" {
		rows = append(rows, models.SummaryRow{Factor: "Country", Selection: raw.Country})
	}
	return rows
}

// decimal prints the shortest exact form, always with a fractional part
// ("12.0", "0.55").
func decimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
