package source

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/danak/internal/model"
)

func TestBackupRoundTrip(t *testing.T) {
	d1, _ := model.ParseDate("2026-03-01")
	d2, _ := model.ParseDate("2026-02-14")
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	snap := model.Snapshot{
		Settings: model.Settings{
			Name:            "Mila",
			EIC:             "204567890",
			SelfInsured:     true,
			InsuranceIncome: decimal.RequireFromString("1077"),
		},
		Records: []model.Record{
			{ID: "b", Date: d1, Amount: decimal.RequireFromString("51.129188119"), Description: "converted", Kind: model.KindIncome, CreatedAt: created},
			{ID: "a", Date: d2, Amount: decimal.NewFromInt(700), Description: "design", Kind: model.KindExpense},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBackup(&buf, snap, created))
	out := buf.String()
	assert.Contains(t, out, "version: 1")
	assert.Contains(t, out, `amount: "51.129188119"`)

	got, err := ReadBackup(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap.Settings.Name, got.Settings.Name)
	assert.True(t, got.Settings.InsuranceIncome.Equal(snap.Settings.InsuranceIncome))
	require.Len(t, got.Records, 2)
	assert.Equal(t, "b", got.Records[0].ID, "order preserved")
	assert.True(t, got.Records[0].Amount.Equal(snap.Records[0].Amount), "amounts are exact")
	assert.Equal(t, created, got.Records[0].CreatedAt)
	assert.Equal(t, model.KindExpense, got.Records[1].Kind)
	assert.True(t, got.Records[1].CreatedAt.IsZero())
}

func TestReadBackupRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"future version", "version: 99\n"},
		{"unknown field", "version: 1\nbogus: true\n"},
		{"negative amount", "version: 1\nrecords:\n  - {id: x, date: 2026-01-01, amount: \"-5\", description: d}\n"},
		{"bad date", "version: 1\nrecords:\n  - {id: x, date: 01/01/2026, amount: \"5\", description: d}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBackup(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestReadBackupDefaultsMissingSettings(t *testing.T) {
	got, err := ReadBackup(strings.NewReader("version: 1\nrecords: []\n"))
	require.NoError(t, err)
	assert.True(t, got.Settings.InsuranceIncome.Equal(model.DefaultInsuranceIncome))
	assert.Empty(t, got.Records)
}

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("/tmp/Revenue.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = DetectFormat("backup.yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = DetectFormat("report.pdf")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestScanDirAndDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.yaml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o750))

	files, err := ScanDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, FormatYAML, files[0].Format)
	assert.Equal(t, filepath.Join(dir, "b.csv"), files[1].Path)

	files, err = Discover(filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	_, err = Discover(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	files, err = ScanDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)
}
