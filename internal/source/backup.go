package source

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/danak/internal/model"
)

// NewBackup converts a snapshot to its backup document.
func NewBackup(snap model.Snapshot, exportedAt time.Time) Backup {
	b := Backup{
		Version:    BackupVersion,
		ExportedAt: exportedAt.UTC().Truncate(time.Second),
		Settings: BackupSettings{
			Name:                   snap.Settings.Name,
			EIC:                    snap.Settings.EIC,
			SelfInsured:            snap.Settings.SelfInsured,
			InsuranceIncome:        snap.Settings.InsuranceIncome.String(),
			UsePersonalBankDetails: snap.Settings.UsePersonalBankDetails,
		},
		Records: make([]BackupRecord, 0, len(snap.Records)),
	}
	for _, r := range snap.Records {
		br := BackupRecord{
			ID:          r.ID,
			Date:        r.Date.Format(model.DateFormat),
			Amount:      r.Amount.String(),
			Description: r.Description,
			Kind:        string(r.Kind),
		}
		if !r.CreatedAt.IsZero() {
			br.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
		}
		b.Records = append(b.Records, br)
	}
	return b
}

// Snapshot converts the backup back to a store snapshot.
func (b Backup) Snapshot() (model.Snapshot, error) {
	if b.Version > BackupVersion {
		return model.Snapshot{}, fmt.Errorf("%w: backup version %d", ErrUnsupportedFormat, b.Version)
	}

	settings := model.DefaultSettings()
	settings.Name = b.Settings.Name
	settings.EIC = b.Settings.EIC
	settings.SelfInsured = b.Settings.SelfInsured
	settings.UsePersonalBankDetails = b.Settings.UsePersonalBankDetails
	if b.Settings.InsuranceIncome != "" {
		v, err := decimal.NewFromString(b.Settings.InsuranceIncome)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("settings insurance income: %w", err)
		}
		settings.InsuranceIncome = v
	}

	snap := model.Snapshot{Settings: settings, Records: make([]model.Record, 0, len(b.Records))}
	for i, br := range b.Records {
		r, err := br.record()
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("record %d: %w", i+1, err)
		}
		snap.Records = append(snap.Records, r)
	}
	return snap, nil
}

func (br BackupRecord) record() (model.Record, error) {
	date, err := model.ParseDate(br.Date)
	if err != nil {
		return model.Record{}, err
	}
	amount, err := decimal.NewFromString(br.Amount)
	if err != nil {
		return model.Record{}, fmt.Errorf("parsing amount %q: %w", br.Amount, err)
	}
	if amount.IsNegative() {
		return model.Record{}, fmt.Errorf("negative amount %s", br.Amount)
	}
	kind, err := model.ParseKind(br.Kind)
	if err != nil {
		return model.Record{}, err
	}

	r := model.Record{
		ID:          br.ID,
		Date:        date,
		Amount:      amount,
		Description: br.Description,
		Kind:        kind,
	}
	if br.CreatedAt != "" {
		r.CreatedAt, _ = time.Parse(time.RFC3339, br.CreatedAt)
	}
	return r, nil
}

// WriteBackup encodes snap as a YAML backup document.
func WriteBackup(w io.Writer, snap model.Snapshot, exportedAt time.Time) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewBackup(snap, exportedAt)); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return enc.Close()
}

// ReadBackup decodes a YAML backup document.
func ReadBackup(r io.Reader) (model.Snapshot, error) {
	var b Backup
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return model.Snapshot{}, fmt.Errorf("decoding backup: %w", err)
	}
	return b.Snapshot()
}
