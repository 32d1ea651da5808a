package domain

import (
	"github.com/shopspring/decimal"
)

// InputKind names the amount a conversion starts from
type InputKind string

const (
	InputNet                    InputKind = "net"
	InputGrossAfterContribution InputKind = "gross_after_contribution"
	InputGross                  InputKind = "gross"
)

// ParseInputKind accepts the canonical names plus the short aliases used by the CLI
func ParseInputKind(s string) (InputKind, bool) {
	switch s {
	case "net", "liquido":
		return InputNet, true
	case "gross_after_contribution", "gac", "bruto_sem_inss":
		return InputGrossAfterContribution, true
	case "gross", "bruto":
		return InputGross, true
	default:
		return "", false
	}
}

// ConversionRequest carries at most one non-zero amount and an optional date
type ConversionRequest struct {
	Date                   string  `json:"date,omitempty" yaml:"date,omitempty"`
	Net                    float64 `json:"net,omitempty" yaml:"net,omitempty"`
	Gross                  float64 `json:"gross,omitempty" yaml:"gross,omitempty"`
	GrossAfterContribution float64 `json:"gross_after_contribution,omitempty" yaml:"gross_after_contribution,omitempty"`
}

// Supplied returns the kinds with a non-zero amount, in net, gross, gac order
func (r ConversionRequest) Supplied() []InputKind {
	var kinds []InputKind
	if r.Net != 0 {
		kinds = append(kinds, InputNet)
	}
	if r.Gross != 0 {
		kinds = append(kinds, InputGross)
	}
	if r.GrossAfterContribution != 0 {
		kinds = append(kinds, InputGrossAfterContribution)
	}
	return kinds
}

// ConversionResult is the full breakdown of one conversion.
// Money fields are rounded to cents.
type ConversionResult struct {
	Gross                  decimal.Decimal `json:"gross" yaml:"gross"`
	GrossAfterContribution decimal.Decimal `json:"gross_after_contribution" yaml:"gross_after_contribution"`
	Net                    decimal.Decimal `json:"net" yaml:"net"`
	ContributionAmount     decimal.Decimal `json:"contribution_amount" yaml:"contribution_amount"`
	ContributionRate       decimal.Decimal `json:"contribution_rate" yaml:"contribution_rate"`
	ContributionDeduction  decimal.Decimal `json:"contribution_deduction" yaml:"contribution_deduction"`
	TaxAmount              decimal.Decimal `json:"tax_amount" yaml:"tax_amount"`
	TaxRate                decimal.Decimal `json:"tax_rate" yaml:"tax_rate"`
	TaxDeduction           decimal.Decimal `json:"tax_deduction" yaml:"tax_deduction"`
	Status                 string          `json:"status" yaml:"status"`
	EffectiveDate          string          `json:"effective_date" yaml:"effective_date"`
	Input                  InputKind       `json:"input" yaml:"input"`
}

// StatusOK marks a successful conversion
const StatusOK = "ok"
