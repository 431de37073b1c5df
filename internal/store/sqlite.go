// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"nse-screener/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	mu        sync.RWMutex
	syncTimes map[string]time.Time
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:        db,
		syncTimes: make(map[string]time.Time),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Candles table for daily OHLCV history
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timestamp)
	);

	-- One row per completed or interrupted batch run
	CREATE TABLE IF NOT EXISTS screening_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_date TEXT NOT NULL,
		processed INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		duration_seconds REAL NOT NULL,
		interrupted INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Per-symbol verdicts belonging to a run
	CREATE TABLE IF NOT EXISTS screening_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		company_name TEXT,
		sector TEXT,
		industry TEXT,
		market_cap REAL,
		net_profit REAL,
		roce REAL,
		roe REAL,
		debt_to_equity REAL,
		latest_quarter_profit REAL,
		last3q_profits TEXT,
		public_holding REAL,
		is_bank_finance INTEGER DEFAULT 0,
		is_psu INTEGER DEFAULT 0,
		passes INTEGER DEFAULT 0,
		screening_date TEXT,
		FOREIGN KEY (run_id) REFERENCES screening_runs(id)
	);

	-- Candle signals keyed by generation date
	CREATE TABLE IF NOT EXISTS candle_signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		generated_date TEXT NOT NULL,
		symbol TEXT NOT NULL,
		buy_date TEXT NOT NULL,
		buy_price REAL NOT NULL,
		sell_date TEXT NOT NULL,
		sell_price REAL NOT NULL,
		gain_percent REAL NOT NULL,
		days INTEGER NOT NULL,
		UNIQUE(generated_date, symbol, buy_date)
	);

	-- Sync status tracking
	CREATE TABLE IF NOT EXISTS sync_status (
		data_type TEXT PRIMARY KEY,
		last_sync DATETIME NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_candles_symbol_ts ON candles(symbol, timestamp);
	CREATE INDEX IF NOT EXISTS idx_rows_run ON screening_rows(run_id);
	CREATE INDEX IF NOT EXISTS idx_signals_date ON candle_signals(generated_date);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCandles saves candles to the database.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol string, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, symbol, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCandles retrieves candles from the database.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}

	return candles, nil
}

// GetCandlesFreshness returns the timestamp of the most recent candle.
func (s *SQLiteStore) GetCandlesFreshness(ctx context.Context, symbol string) (time.Time, error) {
	var timestamp sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(timestamp) FROM candles WHERE symbol = ?
	`, symbol).Scan(&timestamp)
	if err != nil && err != sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("failed to get candles freshness: %w", err)
	}
	if !timestamp.Valid {
		return time.Time{}, nil
	}
	return timestamp.Time, nil
}

// SaveScreeningRun stores a run summary with its verdict rows and returns
// the run ID.
func (s *SQLiteStore) SaveScreeningRun(ctx context.Context, run *ScreeningRun, rows []models.ScreeningRow) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO screening_runs (run_date, processed, passed, skipped, duration_seconds, interrupted)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.RunDate, run.Processed, run.Passed, run.Skipped, run.Duration.Seconds(), boolToInt(run.Interrupted))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO screening_rows (
			run_id, symbol, company_name, sector, industry, market_cap,
			net_profit, roce, roe, debt_to_equity, latest_quarter_profit,
			last3q_profits, public_holding, is_bank_finance, is_psu, passes, screening_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			runID, r.Symbol, r.CompanyName, r.Sector, r.Industry, r.MarketCap,
			r.NetProfit, r.ROCE, r.ROE, r.DebtToEquity, r.LatestQuarterProfit,
			r.Last3QProfits, r.PublicHolding, boolToInt(r.IsBankFinance),
			boolToInt(r.IsPSU), boolToInt(r.PassesCriteria), r.ScreeningDate)
		if err != nil {
			return 0, fmt.Errorf("failed to insert verdict for %s: %w", r.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return runID, nil
}

// GetScreeningRuns returns the most recent run summaries, newest first.
func (s *SQLiteStore) GetScreeningRuns(ctx context.Context, limit int) ([]ScreeningRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_date, processed, passed, skipped, duration_seconds, interrupted, created_at
		FROM screening_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []ScreeningRun
	for rows.Next() {
		var r ScreeningRun
		var seconds float64
		var interrupted int
		if err := rows.Scan(&r.ID, &r.RunDate, &r.Processed, &r.Passed, &r.Skipped, &seconds, &interrupted, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Duration = time.Duration(seconds * float64(time.Second))
		r.Interrupted = interrupted != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunRows returns one run's verdict rows, optionally only the passes.
func (s *SQLiteStore) GetRunRows(ctx context.Context, runID int64, passedOnly bool) ([]models.ScreeningRow, error) {
	query := `
		SELECT symbol, company_name, sector, industry, market_cap,
		       net_profit, roce, roe, debt_to_equity, latest_quarter_profit,
		       last3q_profits, public_holding, is_bank_finance, is_psu, passes, screening_date
		FROM screening_rows
		WHERE run_id = ?`
	if passedOnly {
		query += ` AND passes = 1`
	}
	query += ` ORDER BY market_cap DESC`

	dbRows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run rows: %w", err)
	}
	defer dbRows.Close()

	var out []models.ScreeningRow
	for dbRows.Next() {
		var r models.ScreeningRow
		var isBank, isPSU, passes int
		if err := dbRows.Scan(&r.Symbol, &r.CompanyName, &r.Sector, &r.Industry, &r.MarketCap,
			&r.NetProfit, &r.ROCE, &r.ROE, &r.DebtToEquity, &r.LatestQuarterProfit,
			&r.Last3QProfits, &r.PublicHolding, &isBank, &isPSU, &passes, &r.ScreeningDate); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		r.IsBankFinance = isBank != 0
		r.IsPSU = isPSU != 0
		r.PassesCriteria = passes != 0
		out = append(out, r)
	}
	return out, dbRows.Err()
}

// SaveSignals replaces the stored signals for the given generation date.
func (s *SQLiteStore) SaveSignals(ctx context.Context, date string, rows []models.SignalRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM candle_signals WHERE generated_date = ?`, date); err != nil {
		return fmt.Errorf("failed to clear signals: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candle_signals (generated_date, symbol, buy_date, buy_price, sell_date, sell_price, gain_percent, days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, date, r.Symbol, r.BuyDate, r.BuyPrice, r.SellDate, r.SellPrice, r.GainPercent, r.Days); err != nil {
			return fmt.Errorf("failed to insert signal for %s: %w", r.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSignals returns the signals generated on the given date, in symbol
// then buy-date order.
func (s *SQLiteStore) GetSignals(ctx context.Context, date string) ([]models.SignalRow, error) {
	dbRows, err := s.db.QueryContext(ctx, `
		SELECT symbol, buy_date, buy_price, sell_date, sell_price, gain_percent, days
		FROM candle_signals
		WHERE generated_date = ?
		ORDER BY symbol ASC, buy_date ASC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer dbRows.Close()

	var out []models.SignalRow
	for dbRows.Next() {
		var r models.SignalRow
		if err := dbRows.Scan(&r.Symbol, &r.BuyDate, &r.BuyPrice, &r.SellDate, &r.SellPrice, &r.GainPercent, &r.Days); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		out = append(out, r)
	}
	return out, dbRows.Err()
}

// LatestSignalDate returns the most recent generation date, or "".
func (s *SQLiteStore) LatestSignalDate(ctx context.Context) (string, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(generated_date) FROM candle_signals`).Scan(&date)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to get latest signal date: %w", err)
	}
	if !date.Valid {
		return "", nil
	}
	return date.String, nil
}

// GetLastSync returns the last sync time for a data type.
func (s *SQLiteStore) GetLastSync(dataType string) time.Time {
	s.mu.RLock()
	if t, ok := s.syncTimes[dataType]; ok {
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	var lastSync time.Time
	err := s.db.QueryRow(`
		SELECT last_sync FROM sync_status WHERE data_type = ?
	`, dataType).Scan(&lastSync)
	if err != nil {
		return time.Time{}
	}

	s.mu.Lock()
	s.syncTimes[dataType] = lastSync
	s.mu.Unlock()

	return lastSync
}

// SetLastSync sets the last sync time for a data type.
func (s *SQLiteStore) SetLastSync(dataType string, t time.Time) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sync_status (data_type, last_sync, updated_at)
		VALUES (?, ?, ?)
	`, dataType, t, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set last sync: %w", err)
	}

	s.mu.Lock()
	s.syncTimes[dataType] = t
	s.mu.Unlock()

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
