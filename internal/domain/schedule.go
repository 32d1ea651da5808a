package domain

import (
	"fmt"
	"math"
	"sort"
)

// ContributionSchedule is the social-contribution (INSS) table in effect from one date
type ContributionSchedule struct {
	Table   BracketTable
	Ceiling float64 // maximum contribution amount
}

// TaxSchedule is the income-tax (IRPF) table in effect from one date
type TaxSchedule struct {
	Table BracketTable
}

// CeilingFromLimit derives the contribution ceiling from the contribution limit
// (salary cap): the top bracket applied to the limit, rounded to cents.
func CeilingFromLimit(table BracketTable, limit float64) float64 {
	last := table.Last()
	return RoundCents(limit*last.Rate - last.Deduction)
}

// RoundCents rounds half away from zero to 2 decimal places
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Schedules holds every contribution and tax schedule known to the process.
// Build once with NewSchedules and share; it is safe for concurrent use.
type Schedules struct {
	Contribution *DatedRegistry[ContributionSchedule]
	Tax          *DatedRegistry[TaxSchedule]
	// Dates is the union of both registries' keys; it selects the effective
	// date of a conversion.
	Dates *DatedRegistry[struct{}]
}

// NewSchedules validates and indexes the schedules
func NewSchedules(contribution map[string]ContributionSchedule, tax map[string]TaxSchedule, opts ...RegistryOption) (*Schedules, error) {
	if len(contribution) == 0 {
		return nil, &ScheduleError{Source: "contribution", Message: "no schedules"}
	}
	if len(tax) == 0 {
		return nil, &ScheduleError{Source: "tax", Message: "no schedules"}
	}

	dates := make(map[string]struct{}, len(contribution)+len(tax))
	for k, s := range contribution {
		if s.Table.Len() == 0 {
			return nil, &ScheduleError{Source: "contribution", Key: k, Message: "empty bracket table"}
		}
		if s.Ceiling <= 0 {
			return nil, &ScheduleError{Source: "contribution", Key: k, Message: fmt.Sprintf("ceiling must be positive, got %v", s.Ceiling)}
		}
		dates[k] = struct{}{}
	}
	for k, s := range tax {
		if s.Table.Len() == 0 {
			return nil, &ScheduleError{Source: "tax", Key: k, Message: "empty bracket table"}
		}
		if s.Table.Kind() != PayloadRateWithDeduction {
			return nil, &ScheduleError{Source: "tax", Key: k, Message: "tax brackets need a rate and a deduction"}
		}
		dates[k] = struct{}{}
	}

	return &Schedules{
		Contribution: NewDatedRegistry(contribution, opts...),
		Tax:          NewDatedRegistry(tax, opts...),
		Dates:        NewDatedRegistry(dates, opts...),
	}, nil
}

// EffectiveDates lists every schedule date, oldest first
func (s *Schedules) EffectiveDates() []string {
	keys := s.Dates.Keys()
	sort.Strings(keys)
	return keys
}
