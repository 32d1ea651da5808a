package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/salconv/internal/currency"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing schedule dates
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("SCHEDULE DATE COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Amount: %s (%s)\n", currency.Format(compSet.Amount), compSet.Input))
	sb.WriteString(fmt.Sprintf("Base Date: %s\n", compSet.BaseDate))
	sb.WriteString("\n")

	nameWidth := 16
	numWidth := 15

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Date",
		numWidth, "Gross",
		numWidth, "INSS",
		numWidth, "IRPF",
		numWidth, "Net"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for i := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&compSet.AlternativeResults[i], nameWidth, numWidth, false))
		}
	}
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.Date))
			sb.WriteString(fmt.Sprintf("  Net:   %s (%s%%)\n",
				tf.formatDelta(alt.NetDiffFromBase), alt.NetPctFromBase.StringFixed(2)))
			if !alt.ContributionDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  INSS:  %s\n", tf.formatDelta(alt.ContributionDiffFromBase)))
			}
			if !alt.TaxDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  IRPF:  %s\n", tf.formatDelta(alt.TaxDiffFromBase)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single date row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.Date
	if result.EffectiveDate != "" && result.EffectiveDate != result.Date {
		name += " → " + result.EffectiveDate
	}
	if isBase {
		name += " (base)"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, name,
		numWidth, currency.Format(result.Gross),
		numWidth, currency.Format(result.Contribution),
		numWidth, currency.Format(result.Tax),
		numWidth, currency.Format(result.Net))
}

// formatDelta renders a signed currency delta
func (tf *TableFormatter) formatDelta(delta decimal.Decimal) string {
	switch {
	case delta.IsPositive():
		return "+" + currency.Format(delta)
	case delta.IsNegative():
		return "-" + currency.Format(delta.Abs())
	default:
		return "=" + currency.Format(delta)
	}
}

// FormatCompact creates a compact single-line summary of the net deltas
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseDate))
	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.Date, tf.formatDelta(alt.NetDiffFromBase)))
	}
	return sb.String()
}
