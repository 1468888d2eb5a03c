package source

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
)

// ScanDir discovers importable CSV and YAML files directly inside dir,
// sorted by name. Subdirectories are not descended into.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []DiscoveredFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		format, err := DetectFormat(path)
		if errors.Is(err, ErrUnsupportedFormat) {
			continue
		}
		files = append(files, DiscoveredFile{Path: path, Format: format})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Discover resolves path to a list of importable files. A directory is
// scanned; a regular file must have a supported extension.
func Discover(path string) ([]DiscoveredFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return ScanDir(path)
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return []DiscoveredFile{{Path: path, Format: format}}, nil
}
