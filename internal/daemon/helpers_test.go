package daemon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/danak/internal/model"
)

func newRec(t *testing.T, date, amount string) model.NewRecord {
	t.Helper()
	d, err := model.ParseDate(date)
	require.NoError(t, err)
	return model.NewRecord{Date: d, Amount: decimal.RequireFromString(amount), Description: "lesson"}
}
