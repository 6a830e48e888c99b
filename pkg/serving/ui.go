package serving

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/life-expectancy/pkg/assets"
	"github.com/synaptica-ai/life-expectancy/pkg/common/logger"
	"github.com/synaptica-ai/life-expectancy/pkg/common/models"
	"github.com/synaptica-ai/life-expectancy/pkg/features"
	"github.com/synaptica-ai/life-expectancy/pkg/stage"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// formField describes one input widget. Slider fields render as range inputs.
type formField struct {
	Name   string
	Label  string
	Step   string
	Slider bool
	Group  int
}

var formFields = []formField{
	{Name: "schooling", Label: "Schooling", Step: "0.1", Slider: true, Group: 0},
	{Name: "income_composition", Label: "Income Composition", Step: "0.01", Slider: true, Group: 0},
	{Name: "gdp_per_capita", Label: "GDP per Capita in USD", Step: "100", Group: 0},
	{Name: "immunization", Label: "Immunization (Hepatitis B, Polio, Diphtheria)", Step: "0.01", Slider: true, Group: 0},
	{Name: "alcohol_consumption", Label: "Alcohol Consumption in Liters", Step: "0.1", Slider: true, Group: 1},
	{Name: "adult_mortality", Label: "Adult Mortality per 1000", Step: "0.01", Group: 1},
	{Name: "hiv_aids_deaths", Label: "HIV/AIDS Deaths", Step: "0.01", Group: 1},
	{Name: "bmi", Label: "Body Mass Index", Step: "0.1", Slider: true, Group: 1},
	{Name: "health_expenditure_pct", Label: "Health Expenditure", Step: "0.1", Slider: true, Group: 2},
	{Name: "gov_health_spending", Label: "Gov Health Spending", Step: "0.1", Slider: true, Group: 2},
	{Name: "under_five_deaths", Label: "Under-Five Deaths per 1000", Step: "1", Group: 3},
	{Name: "thinness_prevalence", Label: "Prevalence of Thinness", Step: "0.1", Slider: true, Group: 3},
}

type fieldView struct {
	formField
	Min   string
	Max   string
	Value string
}

type stageInfo struct {
	Label     string
	Indicator string
	Range     string
}

type pageData struct {
	Groups    [][]fieldView
	Status    string
	Statuses  []string
	Country   string
	Countries []string
	Stages    []stageInfo
	Result    *models.PredictionResponse
	Error     string
	ImageAlt  string
	Width     int
	Height    int
}

// UIHandler renders the single-page prediction form.
type UIHandler struct {
	service *Service
	assets  *assets.Store
}

func NewUIHandler(service *Service, store *assets.Store) *UIHandler {
	return &UIHandler{service: service, assets: store}
}

func (h *UIHandler) Register(router *mux.Router) {
	router.HandleFunc("/", h.handleForm).Methods(http.MethodGet)
	router.HandleFunc("/", h.handleSubmit).Methods(http.MethodPost)
}

func (h *UIHandler) handleForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.page(features.DefaultInputs()))
}

func (h *UIHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	raw, err := ParseForm(r)
	if err != nil {
		data := h.page(raw)
		data.Error = describe(err).message
		h.render(w, http.StatusBadRequest, data)
		return
	}

	data := h.page(raw)
	resp, err := h.service.Predict(r.Context(), raw)
	if err != nil {
		f := describe(err)
		data.Error = f.message
		h.render(w, f.status, data)
		return
	}
	data.Result = &resp
	if h.assets != nil {
		data.ImageAlt = h.assets.AltText(resp.Stage.Illustration)
	}
	h.render(w, http.StatusOK, data)
}

// ParseForm reads RawInputs from a submitted form. Absent fields keep their
// defaults; the returned inputs are usable for re-rendering even on error.
func ParseForm(r *http.Request) (features.RawInputs, error) {
	raw := features.DefaultInputs()
	if err := r.ParseForm(); err != nil {
		return raw, features.NewValidationError("", err)
	}
	if status := r.PostForm.Get("status"); status != "" {
		raw.Status = status
	}
	raw.Country = strings.TrimSpace(r.PostForm.Get("country"))
	for _, name := range features.InputNames() {
		value := strings.TrimSpace(r.PostForm.Get(name))
		if value == "" {
			continue
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return raw, features.NewValidationError(name, err)
		}
		if err := raw.SetNumeric(name, f); err != nil {
			return raw, err
		}
	}
	return raw, nil
}

func (h *UIHandler) page(raw features.RawInputs) pageData {
	values := raw.Numeric()
	groups := make([][]fieldView, 4)
	for _, field := range formFields {
		bound := features.Bounds[field.Name]
		view := fieldView{
			formField: field,
			Min:       strconv.FormatFloat(bound.Min, 'f', -1, 64),
			Value:     strconv.FormatFloat(values[field.Name], 'f', -1, 64),
		}
		if !bound.Unbounded {
			view.Max = strconv.FormatFloat(bound.Max, 'f', -1, 64)
		}
		groups[field.Group] = append(groups[field.Group], view)
	}

	b := h.service.Bundle()
	data := pageData{
		Groups:    groups,
		Status:    raw.Status,
		Statuses:  b.Classes(features.FieldStatus),
		Country:   raw.Country,
		Countries: b.Classes(features.FieldCountry),
		Width:     300,
		Height:    300,
	}
	if h.assets != nil {
		data.Width = h.assets.Catalog().Width
		data.Height = h.assets.Catalog().Height
	}
	for _, st := range stage.All {
		data.Stages = append(data.Stages, stageInfo{Label: st.Label(), Indicator: st.Indicator(), Range: st.Range()})
	}
	return data
}

func (h *UIHandler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.Log.WithError(err).Error("failed to render page")
	}
}
