package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/danak/internal/model"
)

const (
	summarySheet = "summary"
	recordsSheet = "records"
	monthsSheet  = "months"
)

// XLSX renders doc as a workbook with summary and records sheets, plus
// a months sheet when the document carries a breakdown.
func XLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(recordsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", doc.Title)
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", doc.GeneratedAt.Format(model.DateFormat))
	_ = f.SetCellValue(summarySheet, "A4", "Name")
	_ = f.SetCellValue(summarySheet, "B4", displayName(doc.Name))
	_ = f.SetCellValue(summarySheet, "A5", "EIC")
	_ = f.SetCellValue(summarySheet, "B5", displayName(doc.EIC))
	_ = f.SetCellValue(summarySheet, "A6", "Period")
	_ = f.SetCellValue(summarySheet, "B6", doc.Period.Label())
	_ = f.SetCellValue(summarySheet, "A7", "Records")
	_ = f.SetCellValue(summarySheet, "B7", len(doc.Rows))
	_ = f.SetCellValue(summarySheet, "A8", "Total (EUR)")
	_ = f.SetCellValue(summarySheet, "B8", doc.Total.Round(2).InexactFloat64())

	_ = f.SetCellValue(recordsSheet, "A1", "Date")
	_ = f.SetCellValue(recordsSheet, "B1", "Description")
	_ = f.SetCellValue(recordsSheet, "C1", "Amount (EUR)")
	_ = f.SetCellValue(recordsSheet, "D1", "Kind")
	for i, r := range doc.Rows {
		row := i + 2
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("A%d", row), r.Date.Format(model.DateFormat))
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("B%d", row), r.Description)
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("C%d", row), r.Amount.Round(2).InexactFloat64())
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("D%d", row), string(r.Kind))
	}

	if doc.Months != nil {
		if err := writeMonths(f, doc.Months); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("rendering xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeMonths(f *excelize.File, months []model.MonthStats) error {
	if _, err := f.NewSheet(monthsSheet); err != nil {
		return err
	}
	header := []string{"Month", "Records", "Income", "Social Security", "Income Tax", "Net Income", "VAT Progress %"}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(monthsSheet, cell, h)
	}
	for i, m := range months {
		s := m.Summary
		values := []interface{}{
			m.Month.String(),
			m.Records,
			s.TotalIncome.Round(2).InexactFloat64(),
			s.SocialSecurity.Round(2).InexactFloat64(),
			s.IncomeTax.Round(2).InexactFloat64(),
			s.NetIncome.Round(2).InexactFloat64(),
			s.VATProgressPercent.Round(2).InexactFloat64(),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(monthsSheet, cell, v)
		}
	}
	return nil
}
