package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/model"
)

type fakeSource struct {
	snap  model.Snapshot
	err   error
	calls int
}

func (f *fakeSource) Snapshot() (model.Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

func TestLoad(t *testing.T) {
	src := &fakeSource{snap: model.Snapshot{
		Settings: model.DefaultSettings(),
		Records:  []model.Record{rec("2026-03-15", "1000"), rec("2026-04-02", "3000")},
	}}
	ref := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)

	res, err := Load(src, config.DefaultConfig(), ref)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, config.BaseActual, res.Mode)
	assert.Equal(t, ref, res.Ref)
	assertDec(t, "737.35", res.Summary.NetIncome)
	assertDec(t, "4000", res.Summary.YearlyTurnover)
	require.Len(t, res.Months, 12)
	assertDec(t, "4000", res.Totals.TotalIncome)

	res.Recompute(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, src.calls, "recompute does not reread the source")
	assertDec(t, "2111.64", res.Summary.SocialSecurityBase)
	assert.Equal(t, time.April, res.Summary.Month)
}

func TestLoadSourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Load(&fakeSource{err: boom}, config.DefaultConfig(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestLoadElectedMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.BaseMode = config.BaseElected
	src := &fakeSource{snap: model.Snapshot{
		Settings: model.DefaultSettings(),
		Records:  []model.Record{rec("2026-05-05", "1000")},
	}}

	res, err := Load(src, cfg, time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assertDec(t, "933", res.Summary.SocialSecurityBase)
}
