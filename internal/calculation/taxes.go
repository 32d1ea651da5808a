package calculation

import (
	"math"

	"github.com/rgehrsitz/salconv/internal/domain"
)

// CALCULATION NOTES:
//
// 1. Contribution (INSS): the bracket covering the whole gross applies to the
//    whole gross (not marginal), minus the bracket deduction when the schedule
//    carries one, capped at the date's ceiling.
//
// 2. Income tax (IRPF): the bracket covering the gross after contribution
//    applies with its fixed deduction:
//       net = gac * (1 - rate) + deduction
//
// Both calculators work on float64 at full precision; rounding to cents only
// happens in the converter.

// ContributionCalculator computes the social contribution owed on a gross salary
type ContributionCalculator struct {
	Schedules *domain.DatedRegistry[domain.ContributionSchedule]
}

// NewContributionCalculator creates a contribution calculator over the given schedules
func NewContributionCalculator(schedules *domain.DatedRegistry[domain.ContributionSchedule]) *ContributionCalculator {
	return &ContributionCalculator{Schedules: schedules}
}

// Contribution returns the contribution amount for gross at the effective date
func (cc *ContributionCalculator) Contribution(gross float64, date string) (float64, error) {
	sched, _, err := cc.Schedules.Resolve(date)
	if err != nil {
		return 0, err
	}
	p := sched.Table.Resolve(gross)
	raw := gross*p.Rate - p.Deduction
	return math.Min(raw, sched.Ceiling), nil
}

// Rates returns the bracket payload applied to gross at the effective date
func (cc *ContributionCalculator) Rates(gross float64, date string) (domain.BracketPayload, error) {
	sched, _, err := cc.Schedules.Resolve(date)
	if err != nil {
		return domain.BracketPayload{}, err
	}
	return sched.Table.Resolve(gross), nil
}

// Ceiling returns the maximum contribution at the effective date
func (cc *ContributionCalculator) Ceiling(date string) (float64, error) {
	sched, _, err := cc.Schedules.Resolve(date)
	if err != nil {
		return 0, err
	}
	return sched.Ceiling, nil
}

// TaxCalculator computes the income tax owed on the gross after contribution
type TaxCalculator struct {
	Schedules *domain.DatedRegistry[domain.TaxSchedule]
}

// NewTaxCalculator creates a tax calculator over the given schedules
func NewTaxCalculator(schedules *domain.DatedRegistry[domain.TaxSchedule]) *TaxCalculator {
	return &TaxCalculator{Schedules: schedules}
}

// TaxNet returns the net salary for a gross after contribution
func (tc *TaxCalculator) TaxNet(gac float64, date string) (float64, error) {
	sched, _, err := tc.Schedules.Resolve(date)
	if err != nil {
		return 0, err
	}
	p := sched.Table.Resolve(gac)
	return gac*(1-p.Rate) + p.Deduction, nil
}

// Rates returns the bracket payload applied to gac at the effective date
func (tc *TaxCalculator) Rates(gac float64, date string) (domain.BracketPayload, error) {
	sched, _, err := tc.Schedules.Resolve(date)
	if err != nil {
		return domain.BracketPayload{}, err
	}
	return sched.Table.Resolve(gac), nil
}
