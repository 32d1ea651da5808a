package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rgehrsitz/salconv/internal/currency"
	"github.com/rgehrsitz/salconv/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// BracketView is one bracket row as shown to users
type BracketView struct {
	From      float64  `json:"from" yaml:"from"`
	Rate      float64  `json:"rate" yaml:"rate"`
	Deduction *float64 `json:"deduction,omitempty" yaml:"deduction,omitempty"`
}

// ScheduleView is the pair of tables in effect on one date
type ScheduleView struct {
	EffectiveDate       string        `json:"effective_date" yaml:"effective_date"`
	ContributionDate    string        `json:"contribution_date" yaml:"contribution_date"`
	ContributionCeiling float64       `json:"contribution_ceiling" yaml:"contribution_ceiling"`
	ContributionTable   []BracketView `json:"contribution" yaml:"contribution"`
	TaxDate             string        `json:"tax_date" yaml:"tax_date"`
	TaxTable            []BracketView `json:"tax" yaml:"tax"`
}

// NewScheduleView resolves the tables in effect on date ("" is today)
func NewScheduleView(schedules *domain.Schedules, date string) (*ScheduleView, error) {
	if _, known := schedules.Dates.TryGet(date); !known {
		if err := domain.ValidateDate(date); err != nil {
			return nil, err
		}
	}
	effective, err := schedules.Dates.ResolveDate(date)
	if err != nil {
		return nil, err
	}
	contribution, contributionDate, err := schedules.Contribution.Resolve(effective)
	if err != nil {
		return nil, err
	}
	tax, taxDate, err := schedules.Tax.Resolve(effective)
	if err != nil {
		return nil, err
	}
	return &ScheduleView{
		EffectiveDate:       effective,
		ContributionDate:    contributionDate,
		ContributionCeiling: contribution.Ceiling,
		ContributionTable:   bracketViews(contribution.Table),
		TaxDate:             taxDate,
		TaxTable:            bracketViews(tax.Table),
	}, nil
}

func bracketViews(t domain.BracketTable) []BracketView {
	entries := t.Entries()
	views := make([]BracketView, len(entries))
	for i, e := range entries {
		views[i] = BracketView{From: e.Threshold, Rate: e.Payload.Rate}
		if e.Payload.Kind == domain.PayloadRateWithDeduction {
			d := e.Payload.Deduction
			views[i].Deduction = &d
		}
	}
	return views
}

var (
	scheduleTitleStyle  = lipgloss.NewStyle().Bold(true)
	scheduleHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	scheduleCellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)

// FormatSchedules renders a schedule view as console tables, JSON or YAML
func FormatSchedules(view *ScheduleView, format string) ([]byte, error) {
	switch GetFormatterName(format) {
	case "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return yaml.Marshal(view)
	case "console":
		var buf bytes.Buffer
		fmt.Fprintln(&buf, scheduleTitleStyle.Render(fmt.Sprintf("Schedules in effect on %s", view.EffectiveDate)))
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, scheduleTitleStyle.Render(fmt.Sprintf("INSS (%s), ceiling %s", view.ContributionDate, formatAmount(view.ContributionCeiling))))
		fmt.Fprintln(&buf, bracketTable(view.ContributionTable).Render())
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, scheduleTitleStyle.Render(fmt.Sprintf("IRPF (%s)", view.TaxDate)))
		fmt.Fprintln(&buf, bracketTable(view.TaxTable).Render())
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// GetFormatterName resolves an alias to its formatter name
func GetFormatterName(name string) string {
	if f := GetFormatterByName(name); f != nil {
		return f.Name()
	}
	return name
}

func bracketTable(rows []BracketView) *table.Table {
	withDeduction := len(rows) > 0 && rows[0].Deduction != nil
	headers := []string{"From", "To", "Rate"}
	if withDeduction {
		headers = append(headers, "Deduction")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return scheduleHeaderStyle
			}
			return scheduleCellStyle
		})

	for i, r := range rows {
		to := "∞"
		if i+1 < len(rows) {
			to = formatAmount(rows[i+1].From)
		}
		cells := []string{formatAmount(r.From), to, currency.FormatPercent(decimal.NewFromFloat(r.Rate))}
		if withDeduction {
			cells = append(cells, formatAmount(*r.Deduction))
		}
		t.Row(cells...)
	}
	return t
}

func formatAmount(v float64) string {
	if math.IsInf(v, 0) {
		return "∞"
	}
	return currency.Format(decimal.NewFromFloat(v))
}
