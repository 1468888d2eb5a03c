// Package source reads and writes the external record formats: CSV
// revenue imports and YAML backups.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format identifies an import file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// DiscoveredFile is an importable file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Format Format
}

// BackupVersion is the current backup document version.
const BackupVersion = 1

// Backup is the YAML document holding a full store snapshot.
type Backup struct {
	Version    int            `yaml:"version"`
	ExportedAt time.Time      `yaml:"exported_at"`
	Settings   BackupSettings `yaml:"settings"`
	Records    []BackupRecord `yaml:"records"`
}

// BackupSettings mirrors model.Settings with string amounts.
type BackupSettings struct {
	Name                   string `yaml:"name"`
	EIC                    string `yaml:"eic"`
	SelfInsured            bool   `yaml:"self_insured"`
	InsuranceIncome        string `yaml:"insurance_income"`
	UsePersonalBankDetails bool   `yaml:"use_personal_bank_details"`
}

// BackupRecord mirrors model.Record. Amount is an exact decimal string in EUR.
type BackupRecord struct {
	ID          string `yaml:"id"`
	Date        string `yaml:"date"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind,omitempty"`
	CreatedAt   string `yaml:"created_at,omitempty"`
}
