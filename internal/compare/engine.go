package compare

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/salconv/internal/calculation"
	"github.com/rgehrsitz/salconv/internal/domain"
)

// CompareEngine converts one amount under several schedule dates
type CompareEngine struct {
	Converter         *calculation.Converter
	MetricsCalculator *MetricsCalculator
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(converter *calculation.Converter) *CompareEngine {
	return &CompareEngine{
		Converter:         converter,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	Kind     domain.InputKind
	Amount   float64
	BaseDate string   // "" compares against the schedules in effect now
	Dates    []string // empty compares against every known effective date
}

// Compare converts the amount at the base date and at each alternative date
func (ce *CompareEngine) Compare(ctx context.Context, options CompareOptions) (*ComparisonSet, error) {
	base, err := ce.Converter.ConvertAmount(ctx, options.Kind, options.Amount, options.BaseDate)
	if err != nil {
		return nil, fmt.Errorf("failed to convert at base date %q: %w", options.BaseDate, err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(options.BaseDate, base)
	if baseResult.Date == "" {
		baseResult.Date = base.EffectiveDate
	}

	dates := options.Dates
	if len(dates) == 0 {
		for _, d := range ce.Converter.Dates() {
			if d != base.EffectiveDate {
				dates = append(dates, d)
			}
		}
	}

	alternatives := []ComparisonResult{}
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := ce.Converter.ConvertAmount(ctx, options.Kind, options.Amount, date)
		if err != nil {
			return nil, fmt.Errorf("failed to convert at %s: %w", date, err)
		}
		alt := ce.MetricsCalculator.CalculateMetrics(date, result)
		alternatives = append(alternatives, ce.MetricsCalculator.CalculateComparison(alt, baseResult))
	}

	compSet := &ComparisonSet{
		Input:              options.Kind,
		Amount:             decimal.NewFromFloat(options.Amount),
		BaseDate:           baseResult.Date,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}
