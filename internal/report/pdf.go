package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/theirongolddev/danak/internal/model"
)

const (
	pdfLeft       = 20.0
	pdfDescX      = 60.0
	pdfAmountX    = 150.0
	pdfTotalX     = 120.0
	pdfTopMargin  = 20.0
	pdfPageBottom = 280.0
	pdfLineHeight = 10.0
	pdfDescWidth  = 85.0
)

// PDF renders doc as an A4 PDF.
func PDF(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := buildPDF(doc).Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func buildPDF(doc Document) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(x, y float64, s string) {
		pdf.Text(x, y, tr(Transliterate(s)))
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 20)
	text(pdfLeft, 20, doc.Title)

	pdf.SetFont("Helvetica", "", 12)
	text(pdfLeft, 30, "Generated: "+doc.GeneratedAt.Format(model.DateFormat))
	text(pdfLeft, 40, "Name: "+displayName(doc.Name))
	text(pdfLeft, 50, "EIC: "+displayName(doc.EIC))
	text(pdfLeft, 60, "Period: "+doc.Period.Label())

	y := 75.0
	pdf.SetFontSize(10)
	pdf.SetTextColor(100, 100, 100)
	text(pdfLeft, y, "Date")
	text(pdfDescX, y, "Description")
	text(pdfAmountX, y, "Amount (EUR)")

	y += pdfLineHeight
	pdf.SetTextColor(0, 0, 0)
	for _, r := range doc.Rows {
		if y > pdfPageBottom {
			pdf.AddPage()
			y = pdfTopMargin
		}
		text(pdfLeft, y, r.Date.Format(model.DateFormat))
		text(pdfDescX, y, fitWidth(pdf, Transliterate(r.Description), pdfDescWidth))
		text(pdfAmountX, y, r.Amount.StringFixed(2))
		y += pdfLineHeight
	}

	y += pdfLineHeight
	if y > pdfPageBottom {
		pdf.AddPage()
		y = pdfTopMargin
	}
	pdf.SetFont("Helvetica", "B", 12)
	text(pdfTotalX, y, fmt.Sprintf("Total: %s EUR", doc.Total.StringFixed(2)))

	return pdf
}

// fitWidth truncates s with an ellipsis so it fits in w millimetres.
func fitWidth(pdf *gofpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > w {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f",
	'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sht", 'ъ': "a", 'ь': "y",
	'ю': "yu", 'я': "ya",
}

// Transliterate maps Bulgarian Cyrillic to Latin using the official
// streamlined system. The core PDF fonts have no Cyrillic glyphs.
func Transliterate(s string) string {
	var b strings.Builder
	for _, r := range s {
		lower := []rune(strings.ToLower(string(r)))[0]
		lat, ok := cyrillic[lower]
		if !ok {
			b.WriteRune(r)
			continue
		}
		if lower != r {
			lat = strings.ToUpper(lat[:1]) + lat[1:]
		}
		b.WriteString(lat)
	}
	return b.String()
}
