package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"snapback/pkg/domain"
	"snapback/pkg/serrors"
)

// Store persists reports as sibling <date>.csv and <date>.json files in one
// directory. Writes go through a temp file and rename, so readers never see a
// partially written report.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the report directory.
func (s *Store) Dir() string { return s.dir }

// Save writes both renderings of the report under the given date key and
// returns their paths. Any failure leaves previously saved reports intact.
func (s *Store) Save(rep domain.Report, date string) (string, string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("could not create report directory: %w", err)
	}

	csvPath, err := s.writeAtomic(date+".csv", func(f *os.File) error {
		return WriteCSV(f, rep)
	})
	if err != nil {
		return "", "", fmt.Errorf("could not write csv report: %w", err)
	}

	jsonPath, err := s.writeAtomic(date+".json", func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")

		return enc.Encode(rep)
	})
	if err != nil {
		return "", "", fmt.Errorf("could not write json report: %w", err)
	}

	return csvPath, jsonPath, nil
}

// writeAtomic writes one file through a temp sibling plus rename.
func (s *Store) writeAtomic(filename string, write func(*os.File) error) (string, error) {
	tmp, err := os.CreateTemp(s.dir, "."+filename+".tmp-")
	if err != nil {
		return "", fmt.Errorf("could not create temp file: %w", err)
	}

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return "", fmt.Errorf("could not close temp file: %w", err)
	}

	final := filepath.Join(s.dir, filename)
	if err := os.Rename(tmp.Name(), final); err != nil {
		_ = os.Remove(tmp.Name())

		return "", fmt.Errorf("could not move report into place: %w", err)
	}

	return final, nil
}

// List returns the dates of all stored reports, newest first. Files that are
// not date-keyed reports are ignored.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read report directory: %w", err)
	}

	dates := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		date := strings.TrimSuffix(name, ".json")
		if _, err := time.Parse(domain.DateFormat, date); err != nil {
			continue
		}
		dates = append(dates, date)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	return dates, nil
}

// Load reads the stored report for the given date.
func (s *Store) Load(date string) (domain.Report, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, date+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Report{}, serrors.With(serrors.ErrNotFound, "report for %s not found", date)
	}
	if err != nil {
		return domain.Report{}, fmt.Errorf("could not read report: %w", err)
	}

	var rep domain.Report
	if err := json.Unmarshal(b, &rep); err != nil {
		return domain.Report{}, fmt.Errorf("could not decode report: %w", err)
	}

	return rep, nil
}

// CSVPath returns the path of the stored CSV rendering for the given date.
func (s *Store) CSVPath(date string) (string, error) {
	path := filepath.Join(s.dir, date+".csv")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return "", serrors.With(serrors.ErrNotFound, "csv report for %s not found", date)
	} else if err != nil {
		return "", fmt.Errorf("could not stat csv report: %w", err)
	}

	return path, nil
}
