package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/lsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	responseFile = "response.csv"
	indexFile    = "index.db"
)

var ErrNotInitialized = errors.New("storage: store not initialized")

// Store keeps one directory per run under baseDir and a SQLite index of all
// runs next to them.
type Store struct {
	baseDir string
	db      *sql.DB
	mu      sync.Mutex
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite3", filepath.Join(s.baseDir, indexFile)+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	s.db = db
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	system TEXT NOT NULL,
	backend TEXT NOT NULL,
	solver TEXT NOT NULL,
	method TEXT NOT NULL,
	input TEXT NOT NULL,
	dt REAL NOT NULL,
	duration REAL NOT NULL,
	steps INTEGER NOT NULL,
	metrics TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
`

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	System    string             `json:"system"`
	Backend   string             `json:"backend"`
	Solver    string             `json:"solver"`
	Method    string             `json:"method"`
	Input     string             `json:"input"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes the run under a fresh id and indexes it. ID, Timestamp, Steps
// and Metrics of meta are filled in from the run; non-finite metrics are
// dropped. A run that cannot be indexed leaves no directory behind.
func (s *Store) Save(ctx context.Context, meta RunMetadata, result *sim.Result) (_ string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return "", ErrNotInitialized
	}

	meta.ID = uuid.NewString()
	meta.Timestamp = time.Now().UTC()
	meta.Steps = result.StepsTaken
	meta.Metrics = finite(result.Metrics)
	if meta.Solver == "" {
		meta.Solver = result.Solver
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()
	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeResponse(filepath.Join(runDir, responseFile), result); err != nil {
		return "", err
	}

	metricsJSON, err := json.Marshal(meta.Metrics)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, timestamp, system, backend, solver, method, input, dt, duration, steps, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, meta.ID, meta.Name, meta.Timestamp, meta.System, meta.Backend, meta.Solver, meta.Method,
		meta.Input, meta.Dt, meta.Duration, meta.Steps, string(metricsJSON))
	if err != nil {
		return "", fmt.Errorf("failed to index run: %w", err)
	}

	return meta.ID, nil
}

func finite(metrics map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	for name, v := range metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[name] = v
		}
	}
	return out
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeResponse writes one row per sample: time, inputs, outputs, states.
func writeResponse(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(result.Times) > 0 {
		header := []string{"time"}
		for i := range result.Inputs[0] {
			header = append(header, fmt.Sprintf("u%d", i))
		}
		for i := range result.Outputs[0] {
			header = append(header, fmt.Sprintf("y%d", i))
		}
		for i := range result.States[0] {
			header = append(header, fmt.Sprintf("x%d", i))
		}
		if err := w.Write(header); err != nil {
			return err
		}

		for i, t := range result.Times {
			row := []string{formatFloat(t)}
			for _, group := range [][]float64{result.Inputs[i], result.Outputs[i], result.States[i]} {
				for _, v := range group {
					row = append(row, formatFloat(v))
				}
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the indexed runs, newest first.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, timestamp, system, backend, solver, method, input, dt, duration, steps, metrics
		FROM runs ORDER BY timestamp DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var meta RunMetadata
		var metricsJSON sql.NullString
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Timestamp, &meta.System, &meta.Backend,
			&meta.Solver, &meta.Method, &meta.Input, &meta.Dt, &meta.Duration, &meta.Steps, &metricsJSON); err != nil {
			return nil, err
		}
		if metricsJSON.Valid && metricsJSON.String != "" {
			if err := json.Unmarshal([]byte(metricsJSON.String), &meta.Metrics); err != nil {
				return nil, err
			}
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadResponse reads a saved response back into a result. Metrics come from
// the run's metadata.
func (s *Store) LoadResponse(runID string) (*sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, responseFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	result := &sim.Result{Solver: meta.Solver, Dt: meta.Dt, Metrics: meta.Metrics}
	if len(records) < 2 {
		return result, nil
	}

	var nu, ny, nx int
	for _, name := range records[0][1:] {
		switch {
		case strings.HasPrefix(name, "u"):
			nu++
		case strings.HasPrefix(name, "y"):
			ny++
		case strings.HasPrefix(name, "x"):
			nx++
		}
	}

	for i, record := range records[1:] {
		values := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			values[j] = v
		}
		result.Times = append(result.Times, values[0])
		result.Inputs = append(result.Inputs, values[1:1+nu])
		result.Outputs = append(result.Outputs, values[1+nu:1+nu+ny])
		result.States = append(result.States, values[1+nu+ny:1+nu+ny+nx])
		result.StepsTaken++
	}
	return result, nil
}
