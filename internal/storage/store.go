package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/ltinorm/internal/analysis"
)

var ErrInvalidID = errors.New("storage: invalid report id")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata is the JSON document written next to each stored response.
type RunMetadata struct {
	ID      string    `json:"id"`
	SavedAt time.Time `json:"saved_at"`
	analysis.Report
}

// Save writes metadata.json and response.csv for r under a new id.
func (s *Store) Save(r *analysis.Report) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", sanitize(r.Name), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{ID: runID, SavedAt: now, Report: *r}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("encode %s: %w", r.Name, err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "metadata.json"), data, 0644); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "response.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"time", "response"}); err != nil {
		return "", err
	}
	for i, v := range r.Response {
		row := []string{
			strconv.FormatFloat(float64(i)*r.Step, 'g', -1, 64),
			strconv.FormatFloat(v, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if err := checkID(runID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadResponse returns the stored impulse response samples and their times.
func (s *Store) LoadResponse(runID string) ([]float64, []float64, error) {
	if err := checkID(runID); err != nil {
		return nil, nil, err
	}
	file, err := os.Open(filepath.Join(s.baseDir, runID, "response.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 2

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	values := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("response.csv: %w", err)
		}
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("response.csv: %w", err)
		}
		times = append(times, t)
		values = append(values, v)
	}

	return values, times, nil
}

func checkID(runID string) error {
	if runID == "" || strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, runID)
	}
	return nil
}

func sanitize(name string) string {
	if name == "" {
		return "system"
	}
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '-'
		}
		return r
	}, name)
}
