package compare

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/salconv/internal/currency"
	"github.com/rgehrsitz/salconv/internal/domain"
)

// ComparisonResult is one conversion of the compared amount under one schedule date
type ComparisonResult struct {
	Date          string                   `json:"date"`
	EffectiveDate string                   `json:"effective_date"`
	Result        *domain.ConversionResult `json:"-"`

	// Key Metrics
	Gross        decimal.Decimal `json:"gross"`
	Contribution decimal.Decimal `json:"contribution"`
	Tax          decimal.Decimal `json:"tax"`
	Net          decimal.Decimal `json:"net"`

	// Comparison to Base
	NetDiffFromBase          decimal.Decimal `json:"net_diff_from_base"`
	NetPctFromBase           decimal.Decimal `json:"net_pct_from_base"`
	ContributionDiffFromBase decimal.Decimal `json:"contribution_diff_from_base"`
	TaxDiffFromBase          decimal.Decimal `json:"tax_diff_from_base"`
}

// ComparisonSet is the base conversion plus the alternatives measured against it
type ComparisonSet struct {
	Input              domain.InputKind   `json:"input"`
	Amount             decimal.Decimal    `json:"amount"`
	BaseDate           string             `json:"base_date"`
	BaseResult         *ComparisonResult  `json:"base_result"`
	AlternativeResults []ComparisonResult `json:"alternative_results"`
	Recommendations    []string           `json:"recommendations"`
}

// MetricsCalculator extracts comparison metrics from conversion results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics builds the comparison row for a conversion requested at date
func (mc *MetricsCalculator) CalculateMetrics(date string, result *domain.ConversionResult) ComparisonResult {
	return ComparisonResult{
		Date:          date,
		EffectiveDate: result.EffectiveDate,
		Result:        result,
		Gross:         result.Gross,
		Contribution:  result.ContributionAmount,
		Tax:           result.TaxAmount,
		Net:           result.Net,
	}
}

// CalculateComparison fills in the deltas of alt against base
func (mc *MetricsCalculator) CalculateComparison(alt, base ComparisonResult) ComparisonResult {
	alt.NetDiffFromBase = alt.Net.Sub(base.Net)
	if !base.Net.IsZero() {
		alt.NetPctFromBase = alt.NetDiffFromBase.
			Div(base.Net).
			Mul(decimal.NewFromInt(100))
	}
	alt.ContributionDiffFromBase = alt.Contribution.Sub(base.Contribution)
	alt.TaxDiffFromBase = alt.Tax.Sub(base.Tax)
	return alt
}

// GenerateRecommendations points out the dates that beat the base
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}
	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}
	base := compSet.BaseResult

	bestNet := base
	for i := range compSet.AlternativeResults {
		if alt := &compSet.AlternativeResults[i]; alt.Net.GreaterThan(bestNet.Net) {
			bestNet = alt
		}
	}
	if bestNet != base {
		recommendations = append(recommendations,
			"Highest net: "+bestNet.Date+" pays "+currency.Format(bestNet.Net.Sub(base.Net))+
				" more than "+base.Date)
	}

	lowestTax := base
	for i := range compSet.AlternativeResults {
		if alt := &compSet.AlternativeResults[i]; alt.Tax.LessThan(lowestTax.Tax) {
			lowestTax = alt
		}
	}
	if lowestTax != base {
		recommendations = append(recommendations,
			"Lowest IRPF: "+lowestTax.Date+" withholds "+currency.Format(base.Tax.Sub(lowestTax.Tax))+
				" less than "+base.Date)
	}

	lowestContribution := base
	for i := range compSet.AlternativeResults {
		if alt := &compSet.AlternativeResults[i]; alt.Contribution.LessThan(lowestContribution.Contribution) {
			lowestContribution = alt
		}
	}
	if lowestContribution != base {
		recommendations = append(recommendations,
			"Lowest INSS: "+lowestContribution.Date+" withholds "+
				currency.Format(base.Contribution.Sub(lowestContribution.Contribution))+" less than "+base.Date)
	}

	return recommendations
}

// ParseDateList splits a comma-separated list of dates
func ParseDateList(dates string) []string {
	if dates == "" {
		return nil
	}

	parts := strings.Split(dates, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
