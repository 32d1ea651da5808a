package config

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/rgehrsitz/salconv/internal/currency"
	"github.com/rgehrsitz/salconv/internal/domain"
	"github.com/shopspring/decimal"
)

// Text table format
//
//	# comment
//	Inicial; Final; Alíquota; Valor a deduzir   <- header, shared by all sections
//	2014                                        <- section: effective date
//	  0,00; 1.787,77; 0%; 0,00                  <- indented rows
//	  1.787,78; 2.679,29; 7,5%; 134,08
//
// The first two columns are the start and end of a bracket, the third its rate
// and the optional fourth its deduction. Without a fourth column the rows carry
// rate-only payloads.

const commentSymbol = "#"

// TextTable is one section of a text table file
type TextTable struct {
	Table domain.BracketTable
	// Limit is the end of the last bracket when finite, otherwise zero
	Limit float64
}

type textRow struct {
	start, end float64
	rate       decimal.Decimal
	deduction  decimal.Decimal
}

// ReadTextTables parses every section of a text table file
func ReadTextTables(r io.Reader) (map[string]TextTable, error) {
	scanner := bufio.NewScanner(r)

	var schema []string
	sections := map[string][]textRow{}
	var order []string
	current := ""
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(strings.SplitN(scanner.Text(), commentSymbol, 2)[0], " \t\r")
		if line == "" {
			continue
		}

		if schema == nil {
			for _, col := range strings.Split(line, ";") {
				schema = append(schema, strings.TrimSpace(col))
			}
			if len(schema) < 3 || len(schema) > 4 {
				return nil, fmt.Errorf("line %d: header needs 3 or 4 columns, got %d", lineNo, len(schema))
			}
			continue
		}

		if line[0] != ' ' && line[0] != '\t' {
			current = strings.TrimSpace(line)
			if _, dup := sections[current]; dup {
				return nil, fmt.Errorf("line %d: duplicate section %q", lineNo, current)
			}
			sections[current] = nil
			order = append(order, current)
			continue
		}

		if current == "" {
			return nil, fmt.Errorf("line %d: row before any section", lineNo)
		}
		row, err := parseTextRow(line, len(schema))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		sections[current] = append(sections[current], row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, fmt.Errorf("missing header line")
	}

	result := make(map[string]TextTable, len(sections))
	for _, key := range order {
		tt, err := buildTextTable(sections[key], len(schema) == 4)
		if err != nil {
			return nil, &domain.ScheduleError{Key: key, Message: "invalid section", Cause: err}
		}
		result[key] = tt
	}
	return result, nil
}

func parseTextRow(line string, columns int) (textRow, error) {
	fields := strings.Split(line, ";")
	if len(fields) != columns {
		return textRow{}, fmt.Errorf("expected %d columns, got %d", columns, len(fields))
	}

	var row textRow
	var err error
	if row.start, err = parseBound(fields[0]); err != nil {
		return textRow{}, err
	}
	if row.end, err = parseBound(fields[1]); err != nil {
		return textRow{}, err
	}
	if row.rate, err = currency.ParsePercent(fields[2]); err != nil {
		return textRow{}, err
	}
	if columns == 4 {
		if row.deduction, err = currency.ParsePercent(fields[3]); err != nil {
			return textRow{}, err
		}
	}
	return row, nil
}

func parseBound(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inf", "+inf", "infinito", "∞":
		return math.Inf(1), nil
	}
	return currency.Parse(s)
}

// buildTextTable turns rows into thresholds. A bracket starts halfway between its
// own start and the previous bracket's end, closing the one-cent gaps published
// tables leave between brackets.
func buildTextTable(rows []textRow, withDeduction bool) (TextTable, error) {
	if len(rows) == 0 {
		return TextTable{}, fmt.Errorf("no rows")
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].start < rows[j].start })

	entries := make([]domain.BracketEntry, 0, len(rows))
	for i, row := range rows {
		threshold := row.start
		if i > 0 {
			threshold = 0.5 * (row.start + rows[i-1].end)
		}
		rate, _ := row.rate.Float64()
		payload := domain.Rate(rate)
		if withDeduction {
			deduction, _ := row.deduction.Float64()
			payload = domain.RateWithDeduction(rate, deduction)
		}
		entries = append(entries, domain.BracketEntry{Threshold: threshold, Payload: payload})
	}

	table, err := domain.NewBracketTable(entries)
	if err != nil {
		return TextTable{}, err
	}

	tt := TextTable{Table: table}
	if end := rows[len(rows)-1].end; !math.IsInf(end, 0) {
		tt.Limit = end
	}
	return tt, nil
}
