// Package currency parses and renders Brazilian real amounts.
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Symbol is the optional prefix accepted by Parse and emitted by Format
const Symbol = "R$"

var printer = message.NewPrinter(language.BrazilianPortuguese)

// ParseDecimal reads an amount such as "R$ 1.234,56", "1234.56" or "1,234.56".
// When both separators appear, the first one to appear groups thousands.
// A lone comma is the decimal separator; repeated dots group thousands.
// An empty string is zero.
func ParseDecimal(s string) (decimal.Decimal, error) {
	val := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	val = strings.TrimPrefix(val, Symbol)

	dot, comma := strings.Index(val, "."), strings.Index(val, ",")
	if dot >= 0 && comma >= 0 {
		if dot < comma {
			val = strings.ReplaceAll(val, ".", "")
		} else {
			val = strings.ReplaceAll(val, ",", "")
		}
	}
	val = strings.ReplaceAll(val, ",", ".")
	if strings.Count(val, ".") > 1 {
		val = strings.ReplaceAll(val, ".", "")
	}

	if val == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unrecognized amount %q", s)
	}
	return d, nil
}

// Parse is ParseDecimal returning a float64
func Parse(s string) (float64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// ParsePercent reads "7,5%" as 0.075; without a "%" suffix it behaves like ParseDecimal
func ParsePercent(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.Contains(trimmed, "%") {
		return ParseDecimal(trimmed)
	}
	d, err := ParseDecimal(strings.Replace(trimmed, "%", "", 1))
	if err != nil {
		return decimal.Zero, err
	}
	return d.Div(decimal.NewFromInt(100)), nil
}

// Format renders an amount as "R$ 1.234,56"
func Format(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%s %v", Symbol, number.Decimal(f, number.Scale(2)))
}

// FormatPercent renders a rate as "7,5%"
func FormatPercent(rate decimal.Decimal) string {
	f, _ := rate.Mul(decimal.NewFromInt(100)).Float64()
	return printer.Sprintf("%v%%", number.Decimal(f, number.MaxFractionDigits(2)))
}
