package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/salconv/internal/calculation"
	"github.com/rgehrsitz/salconv/internal/config"
	"github.com/rgehrsitz/salconv/internal/domain"
	"github.com/rgehrsitz/salconv/internal/output"
	"github.com/rgehrsitz/salconv/internal/server"
	"github.com/rgehrsitz/salconv/internal/solver"
)

func newConverter(t *testing.T) *calculation.Converter {
	t.Helper()
	set, err := config.NewScheduleLoader().LoadDefaults()
	require.NoError(t, err)
	schedules, err := set.Build()
	require.NoError(t, err)
	return calculation.NewConverterWithOptions(schedules, solver.DefaultOptions())
}

func TestEndToEndConversion(t *testing.T) {
	converter := newConverter(t)

	result, err := converter.ConvertAmount(context.Background(), domain.InputNet, 2603.83, "2014-06-30")
	require.NoError(t, err)
	assert.Equal(t, "2014", result.EffectiveDate)
	assert.InDelta(t, 3000, result.Gross.InexactFloat64(), 0.02)

	for _, format := range output.AvailableFormatterNames() {
		t.Run("output_"+format, func(t *testing.T) {
			start := time.Now()
			out, err := output.FormatResult(result, format)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
			assert.Less(t, time.Since(start), 5*time.Second)
		})
	}
}

// Every schedule date must produce a breakdown that adds up.
func TestDataConsistency(t *testing.T) {
	converter := newConverter(t)
	grosses := []float64{500, 1000, 1500, 2500, 3000, 4000, 6000, 10000, 50000}

	for _, date := range converter.Dates() {
		view, err := output.NewScheduleView(converter.Schedules, date)
		require.NoError(t, err)

		for _, gross := range grosses {
			t.Run(fmt.Sprintf("%s/%.0f", date, gross), func(t *testing.T) {
				r, err := converter.ConvertAmount(context.Background(), domain.InputGross, gross, date)
				require.NoError(t, err)

				g := r.Gross.InexactFloat64()
				gac := r.GrossAfterContribution.InexactFloat64()
				net := r.Net.InexactFloat64()
				contribution := r.ContributionAmount.InexactFloat64()
				tax := r.TaxAmount.InexactFloat64()

				assert.Equal(t, date, r.EffectiveDate)
				assert.InDelta(t, gross, g, 0.001)
				assert.InDelta(t, g, gac+contribution, 0.011)
				assert.InDelta(t, gac, net+tax, 0.001)
				assert.LessOrEqual(t, contribution, view.ContributionCeiling+0.001)
				assert.GreaterOrEqual(t, tax, 0.0)
				assert.LessOrEqual(t, net, gac)
			})
		}
	}
}

// One converter serves concurrent requests.
func TestConcurrentConversions(t *testing.T) {
	converter := newConverter(t)
	want, err := converter.ConvertAmount(context.Background(), domain.InputGross, 3000, "2014")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := domain.ConversionRequest{Date: "2014", Gross: 3000}
			if i%2 == 1 {
				req = domain.ConversionRequest{Date: "2014", Net: 2603.83}
			}
			got, err := converter.Convert(context.Background(), req)
			if err != nil {
				errs <- err
				return
			}
			if !got.Net.Equal(want.Net) {
				errs <- fmt.Errorf("request %d: net %s, want %s", i, got.Net, want.Net)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestHTTPRoundTrip(t *testing.T) {
	converter := newConverter(t)
	srv := httptest.NewServer(server.NewRouter(server.NewHandler(converter, nil), server.Options{}))
	defer srv.Close()

	t.Run("legacy calc", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/calc?" + url.Values{"data": {"2014"}, "bruto": {"3.000,00"}}.Encode())
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "2014", body["data_base"])
	})

	t.Run("convert", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/convert?date=2014&net=2603.83")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var view output.ResultView
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
		assert.InDelta(t, 3000, view.Gross, 0.02)
	})

	t.Run("ambiguous request", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/calc?liquido=1000&bruto=2000")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body server.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, server.StatusError, body.Status)
		assert.NotEmpty(t, body.Message)
	})
}
