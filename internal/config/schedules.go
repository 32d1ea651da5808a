package config

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rgehrsitz/salconv/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed data/inss.txt data/irpf.txt
var defaultTables embed.FS

const (
	defaultContributionTable = "data/inss.txt"
	defaultTaxTable          = "data/irpf.txt"
)

// ScheduleFile is the YAML layout of a schedule file
//
//	contribution:
//	  "2014":
//	    limit: 4390.24          # or ceiling: 482.93
//	    brackets:
//	      - {threshold: 0, rate: 0.08}
//	tax:
//	  "2014":
//	    brackets:
//	      - {threshold: 0, rate: 0, deduction: 0}
type ScheduleFile struct {
	Contribution map[string]ContributionEntry `yaml:"contribution"`
	Tax          map[string]TaxEntry          `yaml:"tax"`
}

// ContributionEntry is one dated contribution table
type ContributionEntry struct {
	// Ceiling is the maximum contribution; when zero it is derived from Limit
	Ceiling  float64      `yaml:"ceiling,omitempty"`
	Limit    float64      `yaml:"limit,omitempty"`
	Brackets []BracketRow `yaml:"brackets"`
}

// TaxEntry is one dated tax table
type TaxEntry struct {
	Brackets []BracketRow `yaml:"brackets"`
}

// BracketRow is a bracket in a schedule file. Rows with a deduction build
// rate-with-deduction payloads, rows without one build rate-only payloads.
type BracketRow struct {
	Threshold float64  `yaml:"threshold"`
	Rate      float64  `yaml:"rate"`
	Deduction *float64 `yaml:"deduction,omitempty"`
}

// ScheduleSet is the validated schedule data before indexing
type ScheduleSet struct {
	Contribution map[string]domain.ContributionSchedule
	Tax          map[string]domain.TaxSchedule
}

// Build indexes the set into registries
func (s *ScheduleSet) Build(opts ...domain.RegistryOption) (*domain.Schedules, error) {
	return domain.NewSchedules(s.Contribution, s.Tax, opts...)
}

// ScheduleLoader reads schedule data from files or from the built-in tables
type ScheduleLoader struct{}

// NewScheduleLoader creates a new schedule loader
func NewScheduleLoader() *ScheduleLoader {
	return &ScheduleLoader{}
}

// Load picks the source described by paths: a YAML file, a pair of text tables,
// or the built-in tables when neither is set.
func (sl *ScheduleLoader) Load(paths SchedulePaths) (*ScheduleSet, error) {
	switch {
	case paths.File != "":
		return sl.LoadFromFile(paths.File)
	case paths.ContributionTable != "" || paths.TaxTable != "":
		if paths.ContributionTable == "" || paths.TaxTable == "" {
			return nil, fmt.Errorf("both contribution and tax tables are required")
		}
		return sl.LoadTextFiles(paths.ContributionTable, paths.TaxTable)
	default:
		return sl.LoadDefaults()
	}
}

// LoadDefaults returns the built-in INSS and IRPF tables
func (sl *ScheduleLoader) LoadDefaults() (*ScheduleSet, error) {
	contribution, err := defaultTables.ReadFile(defaultContributionTable)
	if err != nil {
		return nil, err
	}
	tax, err := defaultTables.ReadFile(defaultTaxTable)
	if err != nil {
		return nil, err
	}
	return sl.LoadText(bytes.NewReader(contribution), bytes.NewReader(tax))
}

// LoadFromFile loads a schedule file; ".txt" files are not accepted here since
// text tables come in pairs.
func (sl *ScheduleLoader) LoadFromFile(filename string) (*ScheduleSet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported schedule file %s: expected .yaml, .yml or .json", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	set, err := sl.LoadYAML(data)
	if err != nil {
		return nil, fmt.Errorf("schedule file %s: %w", filename, err)
	}
	return set, nil
}

// LoadYAML parses and validates YAML schedule data
func (sl *ScheduleLoader) LoadYAML(data []byte) (*ScheduleSet, error) {
	var file ScheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return sl.FromFile(&file)
}

// FromFile validates a decoded schedule file
func (sl *ScheduleLoader) FromFile(file *ScheduleFile) (*ScheduleSet, error) {
	set := &ScheduleSet{
		Contribution: make(map[string]domain.ContributionSchedule, len(file.Contribution)),
		Tax:          make(map[string]domain.TaxSchedule, len(file.Tax)),
	}

	for key, entry := range file.Contribution {
		table, err := bracketTable(entry.Brackets)
		if err != nil {
			return nil, scheduleError("contribution", key, err)
		}
		ceiling := entry.Ceiling
		if ceiling == 0 {
			if entry.Limit <= 0 {
				return nil, &domain.ScheduleError{Source: "contribution", Key: key, Message: "either ceiling or limit is required"}
			}
			ceiling = domain.CeilingFromLimit(table, entry.Limit)
		}
		set.Contribution[key] = domain.ContributionSchedule{Table: table, Ceiling: ceiling}
	}

	for key, entry := range file.Tax {
		table, err := bracketTable(entry.Brackets)
		if err != nil {
			return nil, scheduleError("tax", key, err)
		}
		set.Tax[key] = domain.TaxSchedule{Table: table}
	}

	if err := sl.ValidateSet(set); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadTextFiles reads a pair of text tables from disk
func (sl *ScheduleLoader) LoadTextFiles(contributionPath, taxPath string) (*ScheduleSet, error) {
	contribution, err := os.Open(contributionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open contribution table: %w", err)
	}
	defer contribution.Close()

	tax, err := os.Open(taxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open tax table: %w", err)
	}
	defer tax.Close()

	return sl.LoadText(contribution, tax)
}

// LoadText reads a contribution and a tax text table. The last bracket end of
// each contribution section is its limit, from which the ceiling is derived.
func (sl *ScheduleLoader) LoadText(contribution, tax io.Reader) (*ScheduleSet, error) {
	contribTables, err := ReadTextTables(contribution)
	if err != nil {
		return nil, fmt.Errorf("contribution table: %w", err)
	}
	taxTables, err := ReadTextTables(tax)
	if err != nil {
		return nil, fmt.Errorf("tax table: %w", err)
	}

	set := &ScheduleSet{
		Contribution: make(map[string]domain.ContributionSchedule, len(contribTables)),
		Tax:          make(map[string]domain.TaxSchedule, len(taxTables)),
	}
	for key, tt := range contribTables {
		if tt.Limit <= 0 {
			return nil, &domain.ScheduleError{Source: "contribution", Key: key, Message: "last bracket needs a finite end to derive the ceiling"}
		}
		set.Contribution[key] = domain.ContributionSchedule{
			Table:   tt.Table,
			Ceiling: domain.CeilingFromLimit(tt.Table, tt.Limit),
		}
	}
	for key, tt := range taxTables {
		set.Tax[key] = domain.TaxSchedule{Table: tt.Table}
	}

	if err := sl.ValidateSet(set); err != nil {
		return nil, err
	}
	return set, nil
}

// ValidateSet checks the set without indexing it
func (sl *ScheduleLoader) ValidateSet(set *ScheduleSet) error {
	_, err := set.Build()
	return err
}

// ToFile converts a set back into its YAML layout
func (s *ScheduleSet) ToFile() *ScheduleFile {
	file := &ScheduleFile{
		Contribution: make(map[string]ContributionEntry, len(s.Contribution)),
		Tax:          make(map[string]TaxEntry, len(s.Tax)),
	}
	for key, sched := range s.Contribution {
		file.Contribution[key] = ContributionEntry{Ceiling: sched.Ceiling, Brackets: bracketRows(sched.Table)}
	}
	for key, sched := range s.Tax {
		file.Tax[key] = TaxEntry{Brackets: bracketRows(sched.Table)}
	}
	return file
}

func bracketTable(rows []BracketRow) (domain.BracketTable, error) {
	if len(rows) == 0 {
		return domain.BracketTable{}, fmt.Errorf("no brackets")
	}
	entries := make([]domain.BracketEntry, len(rows))
	for i, row := range rows {
		if row.Rate < 0 || row.Rate > 1 {
			return domain.BracketTable{}, fmt.Errorf("bracket %d: rate %v outside [0, 1]", i, row.Rate)
		}
		payload := domain.Rate(row.Rate)
		if row.Deduction != nil {
			payload = domain.RateWithDeduction(row.Rate, *row.Deduction)
		}
		entries[i] = domain.BracketEntry{Threshold: row.Threshold, Payload: payload}
	}
	return domain.NewBracketTable(entries)
}

func bracketRows(table domain.BracketTable) []BracketRow {
	entries := table.Entries()
	rows := make([]BracketRow, len(entries))
	for i, e := range entries {
		rows[i] = BracketRow{Threshold: e.Threshold, Rate: e.Payload.Rate}
		if e.Payload.Kind == domain.PayloadRateWithDeduction {
			d := e.Payload.Deduction
			rows[i].Deduction = &d
		}
	}
	return rows
}

func scheduleError(source, key string, err error) error {
	return &domain.ScheduleError{Source: source, Key: key, Message: "invalid brackets", Cause: err}
}
