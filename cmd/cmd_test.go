package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/pipeline"
	"github.com/theirongolddev/danak/internal/source"
	"github.com/theirongolddev/danak/internal/store"
)

var testRef = time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)

func TestBuildRecord(t *testing.T) {
	appCfg = config.DefaultConfig()

	nr, err := buildRecord("1955,83", "  Translation ", "", "", "BGN", testRef)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", nr.Amount.StringFixed(2))
	assert.Equal(t, "Translation", nr.Description)
	assert.Equal(t, model.KindIncome, nr.Kind)
	assert.Equal(t, testRef, nr.Date)

	nr, err = buildRecord("10", "Refund", "2026-01-05", "expense", "", testRef)
	require.NoError(t, err)
	assert.Equal(t, time.January, nr.Date.Month())
	assert.Equal(t, model.KindExpense, nr.Kind)

	_, err = buildRecord("-1", "x", "", "", "", testRef)
	assert.Error(t, err)
	_, err = buildRecord("1", "x", "05.01.2026", "", "", testRef)
	assert.Error(t, err)
	_, err = buildRecord("1", "x", "", "gift", "", testRef)
	assert.Error(t, err)
	_, err = buildRecord("1", "x", "", "", "USD", testRef)
	assert.Error(t, err)
}

func TestMonthRef(t *testing.T) {
	flagDate = ""
	ref, err := monthRef("2025-11")
	if err != nil {
		t.Fatalf("monthRef: %v", err)
	}
	want := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	if !ref.Equal(want) {
		t.Fatalf("monthRef = %v, want %v", ref, want)
	}

	if _, err := monthRef("2025"); err == nil {
		t.Fatal("monthRef accepted a bare year")
	}
}

func TestLoadDataReadsStore(t *testing.T) {
	appCfg = config.DefaultConfig()
	appCfg.General.DataDir = t.TempDir()
	defer func() { appCfg = config.DefaultConfig() }()

	nr, err := buildRecord("1000", "Consulting", "2026-03-05", "", "EUR", testRef)
	if err != nil {
		t.Fatalf("buildRecord: %v", err)
	}
	if err := withStore(func(st *store.Store) error {
		_, err := st.Add(nr)
		return err
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	result, err := loadData(testRef)
	if err != nil {
		t.Fatalf("loadData: %v", err)
	}
	if got := len(result.Snapshot.Records); got != 1 {
		t.Fatalf("records = %d, want 1", got)
	}
	if got := result.Summary.NetIncome.StringFixed(2); got != "737.35" {
		t.Fatalf("net income = %s, want 737.35", got)
	}
}

func TestExportPeriod(t *testing.T) {
	defer func() { flagExportYear, flagExportMonth = 0, 0 }()

	flagExportYear, flagExportMonth = 0, 0
	p, err := exportPeriod(testRef)
	require.NoError(t, err)
	assert.True(t, p.IsAll())

	flagExportMonth = 2
	p, err = exportPeriod(testRef)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Period{Year: 2026, Month: time.February}, p)

	flagExportYear, flagExportMonth = 2025, 0
	p, err = exportPeriod(testRef)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Period{Year: 2025}, p)

	flagExportMonth = 13
	_, err = exportPeriod(testRef)
	assert.Error(t, err)
}

func TestRenderExportFormats(t *testing.T) {
	appCfg = config.DefaultConfig()
	snap := model.Snapshot{
		Records: []model.Record{
			{ID: "b", Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(200), Description: "Logo", Kind: model.KindIncome},
			{ID: "a", Date: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(100), Description: "Site", Kind: model.KindIncome},
		},
		Settings: model.DefaultSettings(),
	}

	csvData, err := renderExport("csv", snap, pipeline.Period{Year: 2026}, testRef)
	require.NoError(t, err)
	recs, err := source.ParseCSV(bytes.NewReader(csvData), "EUR")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Logo", recs[0].Description)

	yamlData, err := renderExport("yaml", snap, pipeline.Period{Year: 2026}, testRef)
	require.NoError(t, err)
	restored, err := source.ReadBackup(bytes.NewReader(yamlData))
	require.NoError(t, err)
	assert.Len(t, restored.Records, 2)

	pdfData, err := renderExport("pdf", snap, pipeline.Period{Year: 2026}, testRef)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfData, []byte("%PDF")))

	xlsxData, err := renderExport("xlsx", snap, pipeline.Period{}, testRef)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsxData, []byte("PK")))

	_, err = renderExport("docx", snap, pipeline.Period{}, testRef)
	assert.Error(t, err)
}

func TestDefaultExportName(t *testing.T) {
	tests := []struct {
		format string
		period pipeline.Period
		want   string
	}{
		{"pdf", pipeline.Period{Year: 2026, Month: time.March}, "danak-report-2026-03.pdf"},
		{"xlsx", pipeline.Period{}, "danak-report-all.xlsx"},
		{"yaml", pipeline.Period{}, "danak-backup-2026-03-20.yaml"},
	}
	for _, tt := range tests {
		if got := defaultExportName(tt.format, tt.period, testRef); got != tt.want {
			t.Errorf("defaultExportName(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestDaemonProcClaimAndRelease(t *testing.T) {
	proc := daemonProc{pidFile: filepath.Join(t.TempDir(), "run", "danakd.pid")}
	assert.Zero(t, proc.running())

	st := daemonState{PID: os.Getpid(), Addr: "127.0.0.1:9999", DBPath: "/tmp/danak.db"}
	require.NoError(t, proc.claim(st))

	pid, err := proc.pid()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.Equal(t, os.Getpid(), proc.running())

	got, err := proc.state()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", got.Addr)

	// This process is alive, so a second claim must fail.
	assert.Error(t, proc.claim(st))

	proc.release()
	_, err = proc.pid()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDaemonProcReplacesStalePID(t *testing.T) {
	proc := daemonProc{pidFile: filepath.Join(t.TempDir(), "danakd.pid")}
	require.NoError(t, os.WriteFile(proc.pidFile, []byte("not-a-pid\n"), 0o600))

	require.NoError(t, proc.claim(daemonState{PID: os.Getpid()}))
	assert.Equal(t, os.Getpid(), proc.running())
}

func TestWithoutDetach(t *testing.T) {
	args := []string{"daemon", "--detach", "--addr", ":1", "--detach=true"}
	got := withoutDetach(args)
	want := []string{"daemon", "--addr", ":1"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("withoutDetach = %v, want %v", got, want)
	}
}
