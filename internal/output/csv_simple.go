package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rgehrsitz/salconv/internal/domain"
)

// CSVFormatter writes a header row and one value row
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(result *domain.ConversionResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{
		"EffectiveDate", "Input", "Gross", "ContributionAmount", "ContributionRate",
		"GrossAfterContribution", "TaxAmount", "TaxRate", "TaxDeduction", "Net",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	row := []string{
		result.EffectiveDate,
		string(result.Input),
		result.Gross.StringFixed(2),
		result.ContributionAmount.StringFixed(2),
		result.ContributionRate.String(),
		result.GrossAfterContribution.StringFixed(2),
		result.TaxAmount.StringFixed(2),
		result.TaxRate.String(),
		result.TaxDeduction.StringFixed(2),
		result.Net.StringFixed(2),
	}
	if err := w.Write(row); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
