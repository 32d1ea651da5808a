package calculation

import (
	"context"
	"fmt"
	"math"

	"github.com/rgehrsitz/salconv/internal/domain"
	"github.com/rgehrsitz/salconv/internal/solver"
	"github.com/shopspring/decimal"
)

// Converter orchestrates a conversion between net, gross after contribution and gross
type Converter struct {
	Schedules        *domain.Schedules
	ContributionCalc *ContributionCalculator
	TaxCalc          *TaxCalculator
	Inverter         *solver.Inverter
	Logger           Logger
}

// NewConverter creates a converter with the default inverter
func NewConverter(schedules *domain.Schedules) *Converter {
	return NewConverterWithOptions(schedules, solver.DefaultOptions())
}

// NewConverterWithOptions creates a converter with explicit inverter tolerance and iteration cap
func NewConverterWithOptions(schedules *domain.Schedules, options solver.Options) *Converter {
	return &Converter{
		Schedules:        schedules,
		ContributionCalc: NewContributionCalculator(schedules.Contribution),
		TaxCalc:          NewTaxCalculator(schedules.Tax),
		Inverter:         solver.NewInverter(options),
		Logger:           NopLogger{},
	}
}

// SetLogger sets the logger; nil installs a no-op logger
func (c *Converter) SetLogger(l Logger) {
	if l == nil {
		c.Logger = NopLogger{}
		return
	}
	c.Logger = l
}

// Dates lists the effective dates of every known schedule
func (c *Converter) Dates() []string {
	return c.Schedules.EffectiveDates()
}

// ConvertAmount converts a single amount of the given kind
func (c *Converter) ConvertAmount(ctx context.Context, kind domain.InputKind, amount float64, date string) (*domain.ConversionResult, error) {
	req := domain.ConversionRequest{Date: date}
	switch kind {
	case domain.InputNet:
		req.Net = amount
	case domain.InputGrossAfterContribution:
		req.GrossAfterContribution = amount
	case domain.InputGross:
		req.Gross = amount
	default:
		return nil, &domain.InvalidInputError{Field: "kind", Message: fmt.Sprintf("unknown input kind %q", kind)}
	}
	return c.Convert(ctx, req)
}

// Convert derives gross, gross after contribution and net from whichever one the
// request supplies. Inverted paths are always recomputed forward from the rounded
// gross so the three figures agree under the schedules.
func (c *Converter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.ConversionResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, known := c.Schedules.Dates.TryGet(req.Date); !known {
		if err := domain.ValidateDate(req.Date); err != nil {
			return nil, err
		}
	}

	date, err := c.Schedules.Dates.ResolveDate(req.Date)
	if err != nil {
		return nil, err
	}
	c.Logger.Debugf("conversion request %+v resolved to schedule date %s", req, date)

	net, gross, gac := req.Net, req.Gross, req.GrossAfterContribution
	input := domain.InputGross

	if net != 0 {
		input = domain.InputNet
		res, err := c.Inverter.Invert(ctx, func(x float64) (float64, error) {
			return c.TaxCalc.TaxNet(x, date)
		}, net, net)
		if err != nil {
			return nil, fmt.Errorf("net %.2f to gross after contribution: %w", net, err)
		}
		c.Logger.Debugf("net %.2f inverted to gross after contribution %.6f in %d iterations", net, res.Input, res.Iterations)
		gac = res.Input
	}

	if net != 0 || gac != 0 {
		if net == 0 {
			input = domain.InputGrossAfterContribution
		}
		res, err := c.Inverter.Invert(ctx, func(x float64) (float64, error) {
			contribution, err := c.ContributionCalc.Contribution(x, date)
			if err != nil {
				return 0, err
			}
			return x - contribution, nil
		}, gac, gac)
		if err != nil {
			return nil, fmt.Errorf("gross after contribution %.2f to gross: %w", gac, err)
		}
		c.Logger.Debugf("gross after contribution %.6f inverted to gross %.6f in %d iterations", gac, res.Input, res.Iterations)
		gross = res.Input
	}

	result, err := c.forward(domain.RoundCents(gross), date)
	if err != nil {
		return nil, err
	}
	result.Input = input
	return result, nil
}

// forward computes every output from gross
func (c *Converter) forward(gross float64, date string) (*domain.ConversionResult, error) {
	contribution, err := c.ContributionCalc.Contribution(gross, date)
	if err != nil {
		return nil, err
	}
	gac := domain.RoundCents(gross - contribution)
	net, err := c.TaxCalc.TaxNet(gac, date)
	if err != nil {
		return nil, err
	}
	net = domain.RoundCents(net)

	contribRates, err := c.ContributionCalc.Rates(gross, date)
	if err != nil {
		return nil, err
	}
	taxRates, err := c.TaxCalc.Rates(gac, date)
	if err != nil {
		return nil, err
	}

	return &domain.ConversionResult{
		Gross:                  cents(gross),
		GrossAfterContribution: cents(gac),
		Net:                    cents(net),
		ContributionAmount:     cents(contribution),
		ContributionRate:       decimal.NewFromFloat(contribRates.Rate),
		ContributionDeduction:  cents(contribRates.Deduction),
		TaxAmount:              cents(gac - net),
		TaxRate:                decimal.NewFromFloat(taxRates.Rate),
		TaxDeduction:           cents(taxRates.Deduction),
		Status:                 domain.StatusOK,
		EffectiveDate:          date,
	}, nil
}

func validateRequest(req domain.ConversionRequest) error {
	amounts := []struct {
		kind  domain.InputKind
		value float64
	}{
		{domain.InputNet, req.Net},
		{domain.InputGross, req.Gross},
		{domain.InputGrossAfterContribution, req.GrossAfterContribution},
	}
	for _, a := range amounts {
		if math.IsNaN(a.value) || math.IsInf(a.value, 0) {
			return &domain.InvalidInputError{Field: string(a.kind), Message: "amount must be a finite number"}
		}
		if a.value < 0 {
			return &domain.InvalidInputError{Field: string(a.kind), Message: "amount cannot be negative"}
		}
	}
	if supplied := req.Supplied(); len(supplied) > 1 {
		return &domain.InputAmbiguityError{Supplied: supplied}
	}
	return nil
}

func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
