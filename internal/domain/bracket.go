package domain

import (
	"fmt"
)

// PayloadKind tags the shape of a bracket payload
type PayloadKind int

const (
	// PayloadRate carries only a rate
	PayloadRate PayloadKind = iota
	// PayloadRateWithDeduction carries a rate and a fixed amount to deduct
	PayloadRateWithDeduction
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadRate:
		return "rate"
	case PayloadRateWithDeduction:
		return "rate_with_deduction"
	default:
		return fmt.Sprintf("PayloadKind(%d)", int(k))
	}
}

// BracketPayload is the value a bracket assigns to every magnitude it covers.
// Deduction is always zero for PayloadRate payloads.
type BracketPayload struct {
	Kind      PayloadKind
	Rate      float64
	Deduction float64
}

// Rate creates a rate-only payload
func Rate(rate float64) BracketPayload {
	return BracketPayload{Kind: PayloadRate, Rate: rate}
}

// RateWithDeduction creates a payload carrying a rate and a deduction
func RateWithDeduction(rate, deduction float64) BracketPayload {
	return BracketPayload{Kind: PayloadRateWithDeduction, Rate: rate, Deduction: deduction}
}

// Zero returns the zero payload with the same kind as p
func (p BracketPayload) Zero() BracketPayload {
	return BracketPayload{Kind: p.Kind}
}

// BracketEntry is a single (threshold, payload) row of a bracket table
type BracketEntry struct {
	Threshold float64
	Payload   BracketPayload
}

// BracketTable is an ascending list of bracket entries
type BracketTable struct {
	entries []BracketEntry
}

// NewBracketTable validates the entries and builds a table.
// Thresholds must be strictly increasing and every entry must share one payload kind.
func NewBracketTable(entries []BracketEntry) (BracketTable, error) {
	for i := 1; i < len(entries); i++ {
		if entries[i].Threshold <= entries[i-1].Threshold {
			return BracketTable{}, &ScheduleError{
				Message: fmt.Sprintf("threshold %v at row %d is not greater than %v", entries[i].Threshold, i, entries[i-1].Threshold),
			}
		}
		if entries[i].Payload.Kind != entries[0].Payload.Kind {
			return BracketTable{}, &ScheduleError{
				Message: fmt.Sprintf("row %d mixes payload kind %s into a %s table", i, entries[i].Payload.Kind, entries[0].Payload.Kind),
			}
		}
	}
	return BracketTable{entries: append([]BracketEntry(nil), entries...)}, nil
}

// MustBracketTable is NewBracketTable for static data; it panics on invalid entries.
func MustBracketTable(entries ...BracketEntry) BracketTable {
	t, err := NewBracketTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Entries returns a copy of the table rows
func (t BracketTable) Entries() []BracketEntry {
	return append([]BracketEntry(nil), t.entries...)
}

// Len returns the number of rows
func (t BracketTable) Len() int {
	return len(t.entries)
}

// Kind returns the payload kind of the table (PayloadRate for an empty table)
func (t BracketTable) Kind() PayloadKind {
	if len(t.entries) == 0 {
		return PayloadRate
	}
	return t.entries[0].Payload.Kind
}

// Last returns the payload of the highest bracket
func (t BracketTable) Last() BracketPayload {
	if len(t.entries) == 0 {
		return Rate(0)
	}
	return t.entries[len(t.entries)-1].Payload
}

// Resolve returns the payload of the greatest entry whose threshold is <= magnitude.
// Below the first threshold a zero payload of the table's kind applies.
func (t BracketTable) Resolve(magnitude float64) BracketPayload {
	if len(t.entries) == 0 {
		return Rate(0)
	}
	val := t.entries[0].Payload.Zero()
	for _, e := range t.entries {
		if magnitude >= e.Threshold {
			val = e.Payload
		}
	}
	return val
}
