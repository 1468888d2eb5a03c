package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/model"
)

const (
	csvColDate   = 0
	csvColDesc   = 1
	csvColAmount = 2
	csvColKind   = 3
	csvMinFields = 3
)

// ParseCSV reads date,description,amount[,kind] rows. A first row whose
// date column does not parse as a date is treated as a header. A quoted
// decimal comma is accepted. Amounts given in BGN are converted to EUR.
func ParseCSV(r io.Reader, cur currency.Currency) ([]model.NewRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var out []model.NewRecord
	first := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		if isBlank(row) {
			continue
		}
		if first {
			first = false
			if isHeader(row) {
				continue
			}
		}

		nr, err := parseCSVRow(row, cur)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, nr)
	}
	return out, nil
}

func parseCSVRow(row []string, cur currency.Currency) (model.NewRecord, error) {
	if len(row) < csvMinFields {
		return model.NewRecord{}, fmt.Errorf("want at least %d fields, got %d", csvMinFields, len(row))
	}

	date, err := model.ParseDate(row[csvColDate])
	if err != nil {
		return model.NewRecord{}, err
	}

	raw := strings.ReplaceAll(strings.TrimSpace(row[csvColAmount]), ",", ".")
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.NewRecord{}, fmt.Errorf("parsing amount %q: %w", row[csvColAmount], err)
	}

	kind := model.KindIncome
	if len(row) > csvColKind {
		if kind, err = model.ParseKind(row[csvColKind]); err != nil {
			return model.NewRecord{}, err
		}
	}

	return model.NewRecord{
		Date:        date,
		Amount:      currency.ToStorage(amount, cur),
		Description: strings.TrimSpace(row[csvColDesc]),
		Kind:        kind,
	}, nil
}

func isHeader(row []string) bool {
	_, err := model.ParseDate(row[csvColDate])
	return err != nil
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// WriteCSV writes records in the format ParseCSV reads, amounts in EUR.
func WriteCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "description", "amount", "kind"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Date.Format(model.DateFormat), r.Description, r.Amount.StringFixed(2), string(r.Kind)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
