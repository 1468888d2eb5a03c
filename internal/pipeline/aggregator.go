// Package pipeline computes tax summaries from record snapshots.
// Everything except Load is pure and safe for concurrent use.
package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/danak/internal/model"
)

// Period selects records by calendar year and optionally month.
// A zero Year matches every record; a zero Month matches the whole year.
type Period struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// YearOf returns the calendar year containing t.
func YearOf(t time.Time) Period {
	return Period{Year: t.Year()}
}

// ParsePeriod parses "", "YYYY", or "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Period{}, nil
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return MonthOf(t), nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1000 || y > 9999 {
		return Period{}, fmt.Errorf("invalid period %q (want YYYY or YYYY-MM)", s)
	}
	return Period{Year: y}, nil
}

// Contains reports whether date d falls in the period.
func (p Period) Contains(d time.Time) bool {
	if p.Year == 0 {
		return true
	}
	if d.Year() != p.Year {
		return false
	}
	return p.Month == 0 || d.Month() == p.Month
}

// IsAll reports whether the period matches every record.
func (p Period) IsAll() bool {
	return p.Year == 0
}

// Label returns a short human-readable period name.
func (p Period) Label() string {
	switch {
	case p.Year == 0:
		return "All records"
	case p.Month == 0:
		return strconv.Itoa(p.Year)
	default:
		return fmt.Sprintf("%d-%02d", p.Year, int(p.Month))
	}
}

// Filter returns the records falling in the period, preserving order.
func (p Period) Filter(records []model.Record) []model.Record {
	var out []model.Record
	for _, r := range records {
		if p.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByMonth returns records dated in the given calendar month.
// Future-dated records are included when they fall in that month.
func FilterByMonth(records []model.Record, year int, month time.Month) []model.Record {
	return Period{Year: year, Month: month}.Filter(records)
}

// FilterByYear returns records dated in the given calendar year.
func FilterByYear(records []model.Record, year int) []model.Record {
	return Period{Year: year}.Filter(records)
}

// SumAmounts totals record amounts regardless of kind.
func SumAmounts(records []model.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// MonthlyIncome sums the records of one calendar month.
func MonthlyIncome(records []model.Record, year int, month time.Month) decimal.Decimal {
	return SumAmounts(FilterByMonth(records, year, month))
}

// YearlyIncome sums the records of one calendar year.
func YearlyIncome(records []model.Record, year int) decimal.Decimal {
	return SumAmounts(FilterByYear(records, year))
}

// FilterBySearch returns records whose description contains query,
// case-insensitively.
func FilterBySearch(records []model.Record, query string) []model.Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	var out []model.Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Description), q) {
			out = append(out, r)
		}
	}
	return out
}
