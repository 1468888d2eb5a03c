package pipeline

import (
	"fmt"
	"time"

	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/model"
)

// SnapshotSource supplies a consistent record and settings snapshot.
type SnapshotSource interface {
	Snapshot() (model.Snapshot, error)
}

// LoadResult holds the output of a full load-and-compute pass.
type LoadResult struct {
	Snapshot model.Snapshot
	Regime   config.Regime
	Mode     config.BaseMode
	Ref      time.Time
	Summary  model.TaxSummary
	Months   []model.MonthStats
	Totals   model.TaxSummary
	LoadTime time.Duration
}

// Load reads a snapshot from src and computes the summary for ref along
// with the breakdown of ref's year.
func Load(src SnapshotSource, cfg config.Config, ref time.Time) (*LoadResult, error) {
	start := time.Now()

	regime, err := cfg.RegimeAt(ref)
	if err != nil {
		return nil, err
	}

	snap, err := src.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	engine := NewEngine(regime, cfg.General.BaseMode)
	months := engine.AnnualBreakdown(snap, ref.Year())

	return &LoadResult{
		Snapshot: snap,
		Regime:   regime,
		Mode:     engine.Mode,
		Ref:      ref,
		Summary:  engine.Summarize(snap, ref),
		Months:   months,
		Totals:   AnnualTotals(months),
		LoadTime: time.Since(start),
	}, nil
}

// Recompute re-derives the summaries of r for a new reference date under
// the already resolved regime, without touching the source.
func (r *LoadResult) Recompute(ref time.Time) {
	engine := NewEngine(r.Regime, r.Mode)
	r.Ref = ref
	r.Summary = engine.Summarize(r.Snapshot, ref)
	r.Months = engine.AnnualBreakdown(r.Snapshot, ref.Year())
	r.Totals = AnnualTotals(r.Months)
}
