// Package ingest parses the spreadsheet CSV export into run records.
package ingest

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Run is a single logged run. Duration fields are only meaningful when
// HasDuration is true; the shorter two-column log variant has no min/sec
// columns at all, and individual rows may leave them blank.
type Run struct {
	Date        time.Time
	Km          float64
	Minutes     float64
	Seconds     float64
	HasDuration bool
}

// Hours returns the run duration in hours.
func (r Run) Hours() float64 {
	return (60*r.Minutes + r.Seconds) / 3600
}

// PaceMinPerKm returns the run pace in minutes per kilometer.
func (r Run) PaceMinPerKm() float64 {
	return r.Hours() * 60 / r.Km
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// Parse reads the CSV text and returns runs sorted by date. Rows with an
// empty km cell mean "no run that day" and are dropped. Duplicate dates are
// kept; the trend aggregation combines them. Unparseable dates or numbers
// are fatal.
func Parse(text string) ([]Run, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv input has no header row")
	}

	cols := columnIndex(records[0])
	dateCol, ok := cols["date"]
	if !ok {
		return nil, fmt.Errorf("csv input has no %q column", "date")
	}
	kmCol, ok := cols["km"]
	if !ok {
		return nil, fmt.Errorf("csv input has no %q column", "km")
	}
	minCol, hasMin := cols["min"]
	secCol, hasSec := cols["sec"]

	var runs []Run
	for i, rec := range records[1:] {
		line := i + 2

		km, ok, err := floatCell(rec, kmCol)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad km value: %w", line, err)
		}
		if !ok {
			// No distance recorded means no run on that row.
			continue
		}

		date, err := parseDate(cell(rec, dateCol))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		run := Run{Date: date, Km: km}
		if hasMin && hasSec {
			minutes, okMin, err := floatCell(rec, minCol)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad min value: %w", line, err)
			}
			seconds, okSec, err := floatCell(rec, secCol)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad sec value: %w", line, err)
			}
			if okMin || okSec {
				run.Minutes = minutes
				run.Seconds = seconds
				run.HasDuration = true
			}
		}
		runs = append(runs, run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Date.Before(runs[j].Date)
	})

	return runs, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func cell(rec []string, col int) string {
	if col >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[col])
}

// floatCell returns (0, false, nil) for an empty cell.
func floatCell(rec []string, col int) (float64, bool, error) {
	s := cell(rec, col)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, true, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
