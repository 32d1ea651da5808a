package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/salconv/internal/currency"
	"github.com/rgehrsitz/salconv/internal/domain"
)

// ConsoleFormatter renders a human-readable breakdown in Brazilian format
type ConsoleFormatter struct {
	// Notes are printed below the breakdown; nil prints DefaultNotes
	Notes []string
}

func (ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.ConversionResult) ([]byte, error) {
	var buf bytes.Buffer

	title := fmt.Sprintf("SALARY BREAKDOWN (schedule %s, from %s)", result.EffectiveDate, inputLabel(result.Input))
	fmt.Fprintln(&buf, title)
	fmt.Fprintln(&buf, strings.Repeat("=", len(title)))

	row := func(label, amount, detail string) {
		if detail != "" {
			fmt.Fprintf(&buf, "%-28s %16s   %s\n", label, amount, detail)
			return
		}
		fmt.Fprintf(&buf, "%-28s %16s\n", label, amount)
	}

	row("Gross", currency.Format(result.Gross), "")
	contribution := currency.FormatPercent(result.ContributionRate)
	if !result.ContributionDeduction.IsZero() {
		contribution += ", deduction " + currency.Format(result.ContributionDeduction)
	}
	row("  - Contribution (INSS)", currency.Format(result.ContributionAmount), contribution)
	row("Gross after contribution", currency.Format(result.GrossAfterContribution), "")
	row("  - Income tax (IRPF)", currency.Format(result.TaxAmount),
		currency.FormatPercent(result.TaxRate)+", deduction "+currency.Format(result.TaxDeduction))
	row("Net", currency.Format(result.Net), "")

	notes := c.Notes
	if notes == nil {
		notes = DefaultNotes
	}
	if len(notes) > 0 {
		fmt.Fprintln(&buf)
		for _, n := range notes {
			fmt.Fprintf(&buf, "• %s\n", n)
		}
	}
	return buf.Bytes(), nil
}

func inputLabel(kind domain.InputKind) string {
	switch kind {
	case domain.InputNet:
		return "net"
	case domain.InputGrossAfterContribution:
		return "gross after contribution"
	default:
		return "gross"
	}
}
