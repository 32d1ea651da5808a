package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rgehrsitz/salconv/internal/calculation"
	"github.com/rgehrsitz/salconv/internal/config"
	"github.com/rgehrsitz/salconv/internal/domain"
	"github.com/rgehrsitz/salconv/internal/output"
	"github.com/rgehrsitz/salconv/internal/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, opts solver.Options) http.Handler {
	t.Helper()
	set, err := config.NewScheduleLoader().LoadDefaults()
	require.NoError(t, err)
	schedules, err := set.Build()
	require.NoError(t, err)

	converter := calculation.NewConverterWithOptions(schedules, opts)
	return NewRouter(NewHandler(converter, nil), Options{CORSOrigins: []string{"*"}})
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCalc_GrossQuery(t *testing.T) {
	router := newTestRouter(t, solver.DefaultOptions())

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/calc?bruto=3000&data=2014", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got := decode[LegacyResult](t, rec)
	assert.Equal(t, LegacyResult{
		Status:       "ok",
		DataBase:     "2014",
		Bruto:        3000,
		BrutoSemINSS: 2670,
		Liquido:      2603.83,
		INSS:         330,
		INSSAliq:     0.11,
		INSSDeduzir:  0,
		IR:           66.17,
		IRAliq:       0.075,
		IRDeduzir:    134.08,
	}, got)
}

func TestCalc_NetForm(t *testing.T) {
	router := newTestRouter(t, solver.DefaultOptions())

	form := url.Values{"liquido": {"R$ 2.603,83"}, "data": {"2014"}}
	req := httptest.NewRequest(http.MethodPost, "/calc", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := do(t, router, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[LegacyResult](t, rec)
	assert.Equal(t, 3000.0, got.Bruto)
	assert.Equal(t, 2603.83, got.Liquido)
}

func TestCalc_EnglishParameters(t *testing.T) {
	router := newTestRouter(t, solver.DefaultOptions())

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/calc?gross_after_contribution=2670&date=2014", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[LegacyResult](t, rec)
	assert.Equal(t, 3000.0, got.Bruto)
}

func TestCalc_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		opts       solver.Options
		wantStatus int
		wantMsg    string
	}{
		{"ambiguous", "liquido=1000&bruto=3000", solver.DefaultOptions(), http.StatusBadRequest, "use only one of"},
		{"unparseable", "bruto=tres%20mil", solver.DefaultOptions(), http.StatusBadRequest, "unrecognized amount"},
		{"negative", "bruto=-10", solver.DefaultOptions(), http.StatusBadRequest, "cannot be negative"},
		{"no schedule", "bruto=3000&data=2011", solver.DefaultOptions(), http.StatusBadRequest, "no schedule applies"},
		{"no convergence", "liquido=2603.83&data=2014", solver.Options{MaxIterations: 1}, http.StatusUnprocessableEntity, "no convergence"},
		{"malformed date", "bruto=3000&data=2014-06-31", solver.DefaultOptions(), http.StatusBadRequest, "not a YYYY"},
		{"oversized date", "bruto=3000&data=2014-" + strings.Repeat("9", 120), solver.DefaultOptions(), http.StatusBadRequest, "not a YYYY"},
		{"both date names", "bruto=3000&data=2014&date=2013", solver.DefaultOptions(), http.StatusBadRequest, "use only one of data or date"},
		{"both net names", "liquido=0&net=2603,83", solver.DefaultOptions(), http.StatusBadRequest, "use only one of liquido or net"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.opts)
			rec := do(t, router, httptest.NewRequest(http.MethodGet, "/calc?"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			got := decode[ErrorResponse](t, rec)
			assert.Equal(t, StatusError, got.Status)
			assert.Contains(t, got.Message, tt.wantMsg)
		})
	}
}

func TestConvert_JSONBody(t *testing.T) {
	router := newTestRouter(t, solver.DefaultOptions())

	body := `{"gross_after_contribution": 2670, "date": "2014"}`
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	rec := do(t, router, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[output.ResultView](t, rec)
	assert.Equal(t, "gross_after_contribution", got.Input)
	assert.Equal(t, 3000.0, got.Gross)
	assert.Equal(t, 2603.83, got.Net)
	assert.Equal(t, "2014", got.EffectiveDate)
}

func TestConvert_QueryAndBadBody(t *testing.T) {
	router := newTestRouter(t, solver.DefaultOptions())

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/convert?gross=3000&date=2014", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2603.83, decode[output.ResultView](t, rec).Net)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec = do(t, router, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "invalid JSON")

	body := `{"gross": 3000, "date": "2014", "note": "` + strings.Repeat("x", 1<<17) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = do(t, router, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "too large")

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/convert?gross=3000&date=2014xx", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDates(t *testing.T) {
	router := newTestRouter(t, solver.DefaultOptions())

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/dates", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"2012", "2013", "2014", "2015", "2015-04"}, got["dates"])
}

func TestGetSchedules(t *testing.T) {
	router := newTestRouter(t, solver.DefaultOptions())

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/api/schedules/2014-06", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[output.ScheduleView](t, rec)
	assert.Equal(t, "2014", got.EffectiveDate)
	assert.Equal(t, 482.93, got.ContributionCeiling)
	assert.Len(t, got.TaxTable, 5)

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/schedules", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, httptest.NewRequest(http.MethodGet, "/api/schedules/1999", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndCORS(t *testing.T) {
	router := newTestRouter(t, solver.DefaultOptions())

	rec := do(t, router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodOptions, "/calc", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = do(t, router, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.InputAmbiguityError{}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", &domain.InvalidInputError{Field: "net"}), http.StatusBadRequest},
		{&domain.NoApplicableTableError{Query: "2000"}, http.StatusBadRequest},
		{fmt.Errorf("net: %w", &solver.NoConvergenceError{}), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
