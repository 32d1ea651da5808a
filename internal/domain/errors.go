package domain

import (
	"fmt"
	"strings"
)

// ScheduleError reports schedule data that cannot be loaded
type ScheduleError struct {
	Source  string
	Key     string
	Message string
	Cause   error
}

func (e *ScheduleError) Error() string {
	var sb strings.Builder
	sb.WriteString("schedule")
	if e.Source != "" {
		sb.WriteString(" " + e.Source)
	}
	if e.Key != "" {
		sb.WriteString(" [" + e.Key + "]")
	}
	sb.WriteString(": " + e.Message)
	if e.Cause != nil {
		sb.WriteString(": " + e.Cause.Error())
	}
	return sb.String()
}

func (e *ScheduleError) Unwrap() error {
	return e.Cause
}

// NoApplicableTableError is returned when no schedule predates the requested date
type NoApplicableTableError struct {
	Query    string
	Earliest string
}

func (e *NoApplicableTableError) Error() string {
	if e.Earliest == "" {
		return fmt.Sprintf("no schedule applies to %q: no schedules loaded", e.Query)
	}
	return fmt.Sprintf("no schedule applies to %q: earliest schedule is %s", e.Query, e.Earliest)
}

// InputAmbiguityError is returned when more than one amount is supplied
type InputAmbiguityError struct {
	Supplied []InputKind
}

func (e *InputAmbiguityError) Error() string {
	names := make([]string, len(e.Supplied))
	for i, k := range e.Supplied {
		names[i] = string(k)
	}
	return "use only one of net, gross or gross_after_contribution (got " + strings.Join(names, ", ") + ")"
}

// InvalidInputError reports an amount that cannot be converted
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Field + ": " + e.Message
}
