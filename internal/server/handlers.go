package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rgehrsitz/salconv/internal/calculation"
	"github.com/rgehrsitz/salconv/internal/currency"
	"github.com/rgehrsitz/salconv/internal/domain"
	"github.com/rgehrsitz/salconv/internal/output"
	"github.com/rgehrsitz/salconv/internal/solver"
	"go.uber.org/zap"
)

// StatusError is the status field of every error response
const StatusError = "oops"

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 16

// Handler serves conversions over HTTP against one shared converter
type Handler struct {
	converter *calculation.Converter
	logger    *zap.Logger
}

// NewHandler creates a handler; a nil logger discards logs
func NewHandler(converter *calculation.Converter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{converter: converter, logger: logger}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"err_msg"`
}

// LegacyResult is the /calc response, keyed the way existing clients of the
// calculator expect.
type LegacyResult struct {
	Status       string  `json:"status"`
	DataBase     string  `json:"data_base"`
	Bruto        float64 `json:"bruto"`
	BrutoSemINSS float64 `json:"bruto_sem_inss"`
	Liquido      float64 `json:"liquido"`
	INSS         float64 `json:"inss"`
	INSSAliq     float64 `json:"inss_aliq"`
	INSSDeduzir  float64 `json:"inss_deduzir"`
	IR           float64 `json:"ir"`
	IRAliq       float64 `json:"ir_aliq"`
	IRDeduzir    float64 `json:"ir_deduzir"`
}

func newLegacyResult(r *domain.ConversionResult) LegacyResult {
	v := output.NewResultView(r)
	return LegacyResult{
		Status:       v.Status,
		DataBase:     v.EffectiveDate,
		Bruto:        v.Gross,
		BrutoSemINSS: v.GrossAfterContribution,
		Liquido:      v.Net,
		INSS:         v.ContributionAmount,
		INSSAliq:     v.ContributionRate,
		INSSDeduzir:  v.ContributionDeduction,
		IR:           v.TaxAmount,
		IRAliq:       v.TaxRate,
		IRDeduzir:    v.TaxDeduction,
	}
}

// amount parameters accepted by /calc and /api/convert, Portuguese name first
var amountParams = []struct {
	kind  domain.InputKind
	names []string
}{
	{domain.InputNet, []string{"liquido", "net"}},
	{domain.InputGross, []string{"bruto", "gross"}},
	{domain.InputGrossAfterContribution, []string{"bruto_sem_inss", "gross_after_contribution"}},
}

// Calc handles GET and POST /calc with query or form parameters
func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	req, err := parseFormRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.converter.Convert(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLegacyResult(result))
}

// Convert handles GET and POST /api/convert; POST accepts a JSON body too
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req domain.ConversionRequest
	var err error
	if isJSON(r) {
		body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if decodeErr := json.NewDecoder(body).Decode(&req); decodeErr != nil {
			err = &domain.InvalidInputError{Field: "body", Message: "invalid JSON: " + decodeErr.Error()}
		}
	} else {
		req, err = parseFormRequest(r)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.converter.Convert(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, output.NewResultView(result))
}

// ListDates handles GET /api/dates
func (h *Handler) ListDates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"dates": h.converter.Dates()})
}

// GetSchedules handles GET /api/schedules and /api/schedules/{date}
func (h *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	view, err := output.NewScheduleView(h.converter.Schedules, chi.URLParam(r, "date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": domain.StatusOK})
}

func parseFormRequest(r *http.Request) (domain.ConversionRequest, error) {
	var req domain.ConversionRequest
	date, err := singleValue(r, "data", "date")
	if err != nil {
		return req, err
	}
	req.Date = date
	for _, p := range amountParams {
		raw, err := singleValue(r, p.names...)
		if err != nil {
			return req, err
		}
		amount, err := currency.Parse(raw)
		if err != nil {
			return req, &domain.InvalidInputError{Field: string(p.kind), Message: fmt.Sprintf("unrecognized amount %q", raw)}
		}
		switch p.kind {
		case domain.InputNet:
			req.Net = amount
		case domain.InputGross:
			req.Gross = amount
		case domain.InputGrossAfterContribution:
			req.GrossAfterContribution = amount
		}
	}
	return req, nil
}

// singleValue returns the one non-empty value among aliases of a parameter
func singleValue(r *http.Request, names ...string) (string, error) {
	value, from := "", ""
	for _, n := range names {
		v := strings.TrimSpace(r.FormValue(n))
		if v == "" {
			continue
		}
		if from != "" {
			return "", &domain.InvalidInputError{Field: names[0], Message: fmt.Sprintf("use only one of %s or %s", from, n)}
		}
		value, from = v, n
	}
	return value, nil
}

func isJSON(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json"
}

// statusFor maps conversion errors to HTTP status codes
func statusFor(err error) int {
	var (
		ambiguity *domain.InputAmbiguityError
		invalid   *domain.InvalidInputError
		noTable   *domain.NoApplicableTableError
		noConv    *solver.NoConvergenceError
	)
	switch {
	case errors.As(err, &ambiguity), errors.As(err, &invalid), errors.As(err, &noTable):
		return http.StatusBadRequest
	case errors.As(err, &noConv):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("conversion failed", fields...)
	} else {
		h.logger.Debug("request rejected", fields...)
	}
	writeJSON(w, status, ErrorResponse{Status: StatusError, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
