package serving

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/synaptica-ai/life-expectancy/pkg/common/logger"
	"github.com/synaptica-ai/life-expectancy/pkg/features"
)

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestUIRendersDefaults(t *testing.T) {
	router := newTestRouter(t, NewService(testBundle(t, &fixedModel{}), nil, nil, nil), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Life Expectancy Prediction",
		`name="schooling"`,
		`value="5000"`,
		`<option value="Developed" selected>`,
		"At Risk",
		"Predict Life Expectancy",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if strings.Contains(body, `name="country"`) {
		t.Fatal("country select should be hidden without a country encoder")
	}
}

func TestUISubmitShowsResult(t *testing.T) {
	logger.Silence()
	store := testStore(t)
	router := newTestRouter(t, NewService(testBundle(t, &fixedModel{value: 68.3}), store, nil, nil), store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm(url.Values{
		"status":          {"Developing"},
		"schooling":       {"12"},
		"adult_mortality": {"150"},
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<strong>68 years</strong>",
		"Unhealthy",
		`src="/assets/unhealthy"`,
		"$5,000.00",
		"12.0 years",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("result page missing %q", want)
		}
	}
}

func TestUISubmitMissingImage(t *testing.T) {
	logger.Silence()
	store := testStore(t)
	router := newTestRouter(t, NewService(testBundle(t, &fixedModel{value: 40}), store, nil, nil), store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm(url.Values{"status": {"Developed"}}))
	body := rec.Body.String()
	if !strings.Contains(body, "Stage image not found.") {
		t.Fatal("expected missing image notice")
	}
	if !strings.Contains(body, "Critical") {
		t.Fatal("expected critical stage")
	}
}

func TestUISubmitRejectsBadNumber(t *testing.T) {
	logger.Silence()
	model := &fixedModel{value: 60}
	router := newTestRouter(t, NewService(testBundle(t, model), nil, nil, nil), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm(url.Values{"bmi": {"heavy"}}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if model.calls != 0 {
		t.Fatal("model must not be called for a malformed form")
	}
}

func TestParseForm(t *testing.T) {
	raw, err := ParseForm(postForm(url.Values{
		"status":            {"Developing"},
		"under_five_deaths": {"35"},
		"gdp_per_capita":    {" 1234.5 "},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Status != features.StatusDeveloping || raw.UnderFiveDeaths != 35 || raw.GDPPerCapita != 1234.5 {
		t.Fatalf("unexpected inputs %+v", raw)
	}
	if raw.Schooling != features.DefaultInputs().Schooling {
		t.Fatal("absent fields should keep defaults")
	}

	if _, err := ParseForm(postForm(url.Values{"under_five_deaths": {"2.5"}})); !features.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
