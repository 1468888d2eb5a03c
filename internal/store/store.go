// Package store provides the SQLite-backed record and settings repository.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/danak/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidRecord wraps entry validation failures.
	ErrInvalidRecord = errors.New("invalid record")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Store owns the persisted records and settings.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at dbPath and seeds default settings
// on first use.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.seedSettings(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seedSettings() error {
	def := model.DefaultSettings()
	_, err := s.db.Exec(`INSERT OR IGNORE INTO settings
		(id, name, eic, self_insured, insurance_income, use_personal_bank_details, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)`,
		def.Name, def.EIC, boolInt(def.SelfInsured), def.InsuranceIncome.String(),
		boolInt(def.UsePersonalBankDetails), s.stamp())
	if err != nil {
		return fmt.Errorf("seeding settings: %w", err)
	}
	return nil
}

// Add validates nr and stores it as the newest record.
func (s *Store) Add(nr model.NewRecord) (model.Record, error) {
	nr.Description = strings.TrimSpace(nr.Description)
	if nr.Kind == "" {
		nr.Kind = model.KindIncome
	}
	if err := validate.Struct(nr); err != nil {
		return model.Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if nr.Date.IsZero() {
		return model.Record{}, fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}

	r := model.Record{
		ID:          uuid.NewString(),
		Date:        model.Day(nr.Date),
		Amount:      nr.Amount,
		Description: nr.Description,
		Kind:        nr.Kind,
		CreatedAt:   s.now().UTC().Truncate(time.Second),
	}
	if err := insertRecord(s.db, r); err != nil {
		return model.Record{}, err
	}
	return r, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertRecord(db execer, r model.Record) error {
	_, err := db.Exec(`INSERT INTO records (id, date, amount, description, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Date.Format(model.DateFormat), r.Amount.String(), r.Description,
		string(r.Kind), r.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Records returns every record, most recent first.
func (s *Store) Records() ([]model.Record, error) {
	return loadRecords(s.db)
}

func loadRecords(q queryer) ([]model.Record, error) {
	rows, err := q.Query(`SELECT id, date, amount, description, kind, created_at
		FROM records ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		var date, amount, kind, created string
		if err := rows.Scan(&r.ID, &date, &amount, &r.Description, &kind, &created); err != nil {
			return nil, err
		}
		if r.Date, err = time.Parse(model.DateFormat, date); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		r.Kind = model.Kind(kind)
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// Settings returns the current settings.
func (s *Store) Settings() (model.Settings, error) {
	return loadSettings(s.db)
}

func loadSettings(q queryer) (model.Settings, error) {
	var st model.Settings
	var selfInsured, bank int
	var income string
	err := q.QueryRow(`SELECT name, eic, self_insured, insurance_income, use_personal_bank_details
		FROM settings WHERE id = 1`).Scan(&st.Name, &st.EIC, &selfInsured, &income, &bank)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, err
	}
	st.SelfInsured = selfInsured != 0
	st.UsePersonalBankDetails = bank != 0
	if st.InsuranceIncome, err = decimal.NewFromString(income); err != nil {
		return model.Settings{}, fmt.Errorf("settings insurance income: %w", err)
	}
	return st, nil
}

// SaveSettings replaces the settings wholesale.
func (s *Store) SaveSettings(st model.Settings) error {
	return saveSettings(s.db, st, s.stamp())
}

func saveSettings(db execer, st model.Settings, stamp string) error {
	if st.InsuranceIncome.IsNegative() {
		return fmt.Errorf("insurance income must not be negative")
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO settings
		(id, name, eic, self_insured, insurance_income, use_personal_bank_details, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)`,
		st.Name, st.EIC, boolInt(st.SelfInsured), st.InsuranceIncome.String(),
		boolInt(st.UsePersonalBankDetails), stamp)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// UpdateSettings merges the non-nil fields of p into the stored settings
// and returns the result.
func (s *Store) UpdateSettings(p model.SettingsPatch) (model.Settings, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.Settings{}, err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := loadSettings(tx)
	if err != nil {
		return model.Settings{}, err
	}
	next := cur.Apply(p)
	if err := saveSettings(tx, next, s.stamp()); err != nil {
		return model.Settings{}, err
	}
	return next, tx.Commit()
}

// Clear removes every record and resets settings to defaults.
func (s *Store) Clear() error {
	return s.Replace(model.Snapshot{Settings: model.DefaultSettings()})
}

// Replace swaps the whole store content for snap. Records keep the order
// they have in snap.
func (s *Store) Replace(snap model.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}
	for i := len(snap.Records) - 1; i >= 0; i-- {
		r := snap.Records[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.Kind == "" {
			r.Kind = model.KindIncome
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = s.now()
		}
		if err := insertRecord(tx, r); err != nil {
			return err
		}
	}
	if err := saveSettings(tx, snap.Settings, s.stamp()); err != nil {
		return err
	}
	return tx.Commit()
}

// Snapshot reads records and settings in one transaction.
func (s *Store) Snapshot() (model.Snapshot, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.Snapshot{}, err
	}
	defer func() { _ = tx.Rollback() }()

	records, err := loadRecords(tx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("loading records: %w", err)
	}
	settings, err := loadSettings(tx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("loading settings: %w", err)
	}
	return model.Snapshot{Records: records, Settings: settings}, nil
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
