// Package storage keeps a local sqlite archive of ingested runs, so the
// stats commands work without a network round trip.
package storage

import (
	"database/sql"
	"math"
	"os"
	"os/user"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jgehrcke/runni/internal/ingest"
)

type Store struct {
	db *sql.DB
}

// Run is one archived run row.
type Run struct {
	Date    string
	Km      float64
	Seconds int64
}

// DayTotal is the per-day rollup maintained alongside the raw runs.
type DayTotal struct {
	Date    string
	Km      float64
	Seconds int64
	Runs    int64
}

// Totals summarizes the whole archive.
type Totals struct {
	Runs    int64
	Km      float64
	Seconds int64
}

func getDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback: get home dir from user.Current()
		if u, userErr := user.Current(); userErr == nil {
			home = u.HomeDir
		} else {
			return "", err
		}
	}
	dataDir := filepath.Join(home, ".local", "share", "runni")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

func New() (*Store, error) {
	dataDir, err := getDataDir()
	if err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "runni.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		km REAL NOT NULL,
		seconds INTEGER NOT NULL DEFAULT 0,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_date ON runs(date);

	CREATE TABLE IF NOT EXISTS daily_summary (
		date TEXT PRIMARY KEY,
		km REAL DEFAULT 0,
		seconds INTEGER DEFAULT 0,
		runs INTEGER DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// ReplaceRuns swaps the archive contents for the given runs in one
// transaction, so a failed sync leaves the previous archive intact.
// Returns the number of runs stored.
func (s *Store) ReplaceRuns(runs []ingest.Run) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM runs"); err != nil {
		return 0, err
	}
	if _, err := tx.Exec("DELETE FROM daily_summary"); err != nil {
		return 0, err
	}

	for _, r := range runs {
		date := r.Date.Format("2006-01-02")
		seconds := int64(math.Round(r.Hours() * 3600))

		_, err = tx.Exec(
			"INSERT INTO runs (date, km, seconds) VALUES (?, ?, ?)",
			date, r.Km, seconds,
		)
		if err != nil {
			return 0, err
		}

		_, err = tx.Exec(`
			INSERT INTO daily_summary (date, km, seconds, runs) VALUES (?, ?, ?, 1)
			ON CONFLICT(date) DO UPDATE SET
				km = km + excluded.km,
				seconds = seconds + excluded.seconds,
				runs = runs + 1,
				updated_at = CURRENT_TIMESTAMP
		`, date, r.Km, seconds)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(runs), nil
}

// GetDayTotal returns the rollup for one date, zero-valued when the date
// has no runs.
func (s *Store) GetDayTotal(date string) (*DayTotal, error) {
	var total DayTotal
	total.Date = date

	err := s.db.QueryRow(
		"SELECT COALESCE(km, 0), COALESCE(seconds, 0), COALESCE(runs, 0) FROM daily_summary WHERE date = ?",
		date,
	).Scan(&total.Km, &total.Seconds, &total.Runs)

	if err == sql.ErrNoRows {
		return &DayTotal{Date: date}, nil
	}
	if err != nil {
		return nil, err
	}

	return &total, nil
}

// GetRecentTotals returns one entry per day for the last N days including
// today, zero-filled for days without runs.
func (s *Store) GetRecentTotals(days int) ([]DayTotal, error) {
	now := time.Now()
	totals := make([]DayTotal, days)

	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		dayTotal, err := s.GetDayTotal(date)
		if err != nil {
			return nil, err
		}
		totals[days-1-i] = *dayTotal
	}

	return totals, nil
}

// GetTotals summarizes the entire archive.
func (s *Store) GetTotals() (*Totals, error) {
	var t Totals
	err := s.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(km), 0), COALESCE(SUM(seconds), 0) FROM runs",
	).Scan(&t.Runs, &t.Km, &t.Seconds)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetLastRun returns the newest archived run, or nil when the archive is
// empty.
func (s *Store) GetLastRun() (*Run, error) {
	var r Run
	err := s.db.QueryRow(
		"SELECT date, km, seconds FROM runs ORDER BY date DESC, id DESC LIMIT 1",
	).Scan(&r.Date, &r.Km, &r.Seconds)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
