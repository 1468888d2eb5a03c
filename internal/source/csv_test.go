package source

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/model"
)

func TestParseCSV(t *testing.T) {
	in := `date,description,amount,kind
2026-03-01, Guitar lesson ,40
# comment line

2026-03-02,"Translation, urgent","120,50",income
2026-03-03,Studio rent,15.00,expense
`
	got, err := ParseCSV(strings.NewReader(in), currency.EUR)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Guitar lesson", got[0].Description)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, model.KindIncome, got[0].Kind)

	assert.Equal(t, "Translation, urgent", got[1].Description)
	assert.Equal(t, "120.50", got[1].Amount.StringFixed(2))

	assert.Equal(t, model.KindExpense, got[2].Kind)
	assert.Equal(t, 3, got[2].Date.Day())
}

func TestParseCSVWithoutHeader(t *testing.T) {
	got, err := ParseCSV(strings.NewReader("2026-01-15,Consulting,1000\n"), currency.EUR)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestParseCSVConvertsBGN(t *testing.T) {
	got, err := ParseCSV(strings.NewReader("2026-01-15,Consulting,195.583\n"), currency.BGN)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100.00", got[0].Amount.StringFixed(2))
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bad amount", "2026-01-01,x,abc\n", "line 1"},
		{"bad date later", "2026-01-01,x,1\n2026-13-01,y,2\n", "line 2"},
		{"too few fields", "2026-01-01,x\n", "at least 3"},
		{"bad kind", "2026-01-01,x,1,gift\n", "unknown record kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.in), currency.EUR)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	d, _ := model.ParseDate("2026-04-04")
	records := []model.Record{
		{ID: "1", Date: d, Amount: decimal.RequireFromString("12.5"), Description: "a, b", Kind: model.KindIncome},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))
	assert.Contains(t, buf.String(), `"a, b",12.50,income`)

	got, err := ParseCSV(&buf, currency.EUR)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a, b", got[0].Description)
	assert.Equal(t, d, got[0].Date)
}
