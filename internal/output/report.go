package output

import (
	"bytes"
	"encoding/json"

	"github.com/rgehrsitz/salconv/internal/domain"
	"gopkg.in/yaml.v3"
)

// ResultView is the wire shape of a conversion result: plain numbers in place of
// decimals, so JSON and YAML clients read amounts directly.
type ResultView struct {
	Status                 string  `json:"status" yaml:"status"`
	EffectiveDate          string  `json:"effective_date" yaml:"effective_date"`
	Input                  string  `json:"input" yaml:"input"`
	Gross                  float64 `json:"gross" yaml:"gross"`
	ContributionAmount     float64 `json:"contribution_amount" yaml:"contribution_amount"`
	ContributionRate       float64 `json:"contribution_rate" yaml:"contribution_rate"`
	ContributionDeduction  float64 `json:"contribution_deduction" yaml:"contribution_deduction"`
	GrossAfterContribution float64 `json:"gross_after_contribution" yaml:"gross_after_contribution"`
	TaxAmount              float64 `json:"tax_amount" yaml:"tax_amount"`
	TaxRate                float64 `json:"tax_rate" yaml:"tax_rate"`
	TaxDeduction           float64 `json:"tax_deduction" yaml:"tax_deduction"`
	Net                    float64 `json:"net" yaml:"net"`
}

// NewResultView converts a result into its wire shape
func NewResultView(r *domain.ConversionResult) ResultView {
	return ResultView{
		Status:                 r.Status,
		EffectiveDate:          r.EffectiveDate,
		Input:                  string(r.Input),
		Gross:                  r.Gross.InexactFloat64(),
		ContributionAmount:     r.ContributionAmount.InexactFloat64(),
		ContributionRate:       r.ContributionRate.InexactFloat64(),
		ContributionDeduction:  r.ContributionDeduction.InexactFloat64(),
		GrossAfterContribution: r.GrossAfterContribution.InexactFloat64(),
		TaxAmount:              r.TaxAmount.InexactFloat64(),
		TaxRate:                r.TaxRate.InexactFloat64(),
		TaxDeduction:           r.TaxDeduction.InexactFloat64(),
		Net:                    r.Net.InexactFloat64(),
	}
}

// JSONFormatter renders indented JSON
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(result *domain.ConversionResult) ([]byte, error) {
	data, err := json.MarshalIndent(NewResultView(result), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// YAMLFormatter renders YAML
type YAMLFormatter struct{}

func (YAMLFormatter) Name() string { return "yaml" }

func (YAMLFormatter) Format(result *domain.ConversionResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewResultView(result)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
