// Package report builds the revenue export document and renders it as
// PDF or XLSX.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/pipeline"
)

// Title is the heading of every exported report.
const Title = "Revenue Report"

// Row is one exported record.
type Row struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Kind        model.Kind
}

// Document is the renderer-independent export of a record period.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Name        string
	EIC         string
	Period      pipeline.Period
	Rows        []Row
	Total       decimal.Decimal

	// Months is the tax breakdown for a yearly report; nil otherwise.
	Months []model.MonthStats
}

// BuildDocument selects the records of period from snap, most recent
// first, and totals them the same way the aggregator does.
func BuildDocument(snap model.Snapshot, period pipeline.Period, generatedAt time.Time) Document {
	records := period.Filter(snap.Records)

	doc := Document{
		Title:       Title,
		GeneratedAt: generatedAt,
		Name:        snap.Settings.Name,
		EIC:         snap.Settings.EIC,
		Period:      period,
		Rows:        make([]Row, 0, len(records)),
		Total:       pipeline.SumAmounts(records),
	}
	for _, r := range records {
		doc.Rows = append(doc.Rows, Row{
			Date:        r.Date,
			Description: r.Description,
			Amount:      r.Amount,
			Kind:        r.Kind,
		})
	}
	return doc
}

// WithBreakdown attaches the annual tax breakdown to a yearly document.
func (d Document) WithBreakdown(e pipeline.Engine, snap model.Snapshot) Document {
	if d.Period.Year == 0 || d.Period.Month != 0 {
		return d
	}
	d.Months = e.AnnualBreakdown(snap, d.Period.Year)
	return d
}

// displayName returns v or "N/A" when empty.
func displayName(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
