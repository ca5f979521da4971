package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"DrawdownMonitor/internal/model"
)

// SQLiteRecorder persists metric snapshots to a SQLite database. Snapshots
// hold computed metrics only, never raw price history.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read while the monitor writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS metric_snapshots (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp         INTEGER NOT NULL,
			ticker            TEXT NOT NULL,
			current_price     REAL,
			historical_max    REAL,
			drawdown_pct      REAL,
			recover_ratio_pct REAL,
			error             TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON metric_snapshots(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ticker ON metric_snapshots(ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable converts a possibly-NaN metric into a SQL value.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// RecordBatch inserts one row per record inside a single transaction, all
// sharing the batch timestamp.
func (r *SQLiteRecorder) RecordBatch(records []model.MetricRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	now := time.Now().Unix()
	for i := range records {
		rec := &records[i]
		_, err := tx.Exec(`INSERT INTO metric_snapshots
			(timestamp, ticker, current_price, historical_max, drawdown_pct, recover_ratio_pct, error)
			VALUES (?,?,?,?,?,?,?)`,
			now, rec.Ticker,
			nullable(rec.RawCurrentPrice), nullable(rec.RawHistoricalMax),
			nullable(rec.RawDrawdownPct), nullable(rec.RawRecoverRatioPct),
			rec.Error,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert snapshot %s: %w", rec.Ticker, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
