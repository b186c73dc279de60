package pipeline

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fluxml/ml"
)

// Run is one completed training run as recorded in the history table.
type Run struct {
	ID              int64
	TrainedAt       time.Time
	Accuracy        float64
	Samples         int
	ModelLocation   string
	MetricsLocation string
	Report          ml.Report
}

// RunStore keeps the training run history in SQLite.
type RunStore struct {
	db *sql.DB
}

func OpenRunStore(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	query := `
    CREATE TABLE IF NOT EXISTS training_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        trained_at DATETIME,
        accuracy REAL,
        samples INTEGER,
        model_location VARCHAR(255),
        metrics_location VARCHAR(255),
        report TEXT
    );`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("init run store schema: %w", err)
	}

	return &RunStore{db: db}, nil
}

func (s *RunStore) Record(run Run) error {
	report, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO training_runs (trained_at, accuracy, samples, model_location, metrics_location, report)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.TrainedAt, run.Accuracy, run.Samples, run.ModelLocation, run.MetricsLocation, string(report),
	)
	if err != nil {
		return fmt.Errorf("record training run: %w", err)
	}
	return nil
}

// Recent returns up to n runs, newest first.
func (s *RunStore) Recent(n int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, trained_at, accuracy, samples, model_location, metrics_location, report
         FROM training_runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query training runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var report string
		if err := rows.Scan(&run.ID, &run.TrainedAt, &run.Accuracy, &run.Samples,
			&run.ModelLocation, &run.MetricsLocation, &report); err != nil {
			return nil, fmt.Errorf("scan training run: %w", err)
		}
		if err := json.Unmarshal([]byte(report), &run.Report); err != nil {
			return nil, fmt.Errorf("unmarshal run report: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *RunStore) Close() error {
	return s.db.Close()
}
