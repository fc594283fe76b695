package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS candles (
			symbol TEXT NOT NULL,
			interval TEXT NOT NULL,
			open_time INTEGER NOT NULL,
			close_time INTEGER NOT NULL,
			open REAL NOT NULL,
			high REAL NOT NULL,
			low REAL NOT NULL,
			close REAL NOT NULL,
			volume REAL NOT NULL,
			PRIMARY KEY (symbol, interval, open_time)
		);`,
		`CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			interval TEXT NOT NULL,
			agent TEXT NOT NULL,
			steps INTEGER NOT NULL,
			initial_balance REAL NOT NULL,
			final_portfolio REAL NOT NULL,
			profit_loss REAL NOT NULL,
			max_drawdown REAL NOT NULL,
			num_long INTEGER NOT NULL,
			num_short INTEGER NOT NULL,
			num_hold INTEGER NOT NULL,
			reason TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_symbol ON episodes(symbol);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

// CandleRepository Implementation

func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol, interval string, bars []domain.Bar) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO candles (symbol, interval, open_time, close_time, open, high, low, close, volume)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(symbol, interval, open_time) DO UPDATE SET
			  close_time=excluded.close_time,
			  open=excluded.open,
			  high=excluded.high,
			  low=excluded.low,
			  close=excluded.close,
			  volume=excluded.volume`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, interval,
			b.OpenTime.UnixMilli(), b.CloseTime.UnixMilli(), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("failed to save candle %s %s %d: %w", symbol, interval, b.OpenTime.UnixMilli(), err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadCandles(ctx context.Context, symbol, interval string) ([]domain.Bar, error) {
	query := `SELECT open_time, close_time, open, high, low, close, volume FROM candles WHERE symbol = ? AND interval = ? ORDER BY open_time`
	rows, err := s.db.QueryContext(ctx, query, symbol, interval)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var b domain.Bar
		var openMs, closeMs int64
		if err := rows.Scan(&openMs, &closeMs, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		b.OpenTime = time.UnixMilli(openMs).UTC()
		b.CloseTime = time.UnixMilli(closeMs).UTC()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

func (s *SQLiteStore) ListSymbols(ctx context.Context, interval string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM candles WHERE interval = ? ORDER BY symbol`, interval)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}

// EpisodeRepository Implementation

func (s *SQLiteStore) SaveEpisode(ctx context.Context, r *domain.EpisodeResult) error {
	query := `INSERT INTO episodes (id, symbol, interval, agent, steps, initial_balance, final_portfolio, profit_loss, max_drawdown, num_long, num_short, num_hold, reason, started_at, finished_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.Symbol, r.Interval, r.Agent, r.Steps, r.InitialBalance, r.FinalPortfolio, r.ProfitLoss,
		r.MaxDrawdown, r.NumLong, r.NumShort, r.NumHold, string(r.Reason), r.StartedAt, r.FinishedAt)
	return err
}

func (s *SQLiteStore) ListEpisodes(ctx context.Context, limit int) ([]*domain.EpisodeResult, error) {
	query := `SELECT id, symbol, interval, agent, steps, initial_balance, final_portfolio, profit_loss, max_drawdown, num_long, num_short, num_hold, reason, started_at, finished_at
			  FROM episodes ORDER BY finished_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.EpisodeResult
	for rows.Next() {
		var r domain.EpisodeResult
		var reason string
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Interval, &r.Agent, &r.Steps, &r.InitialBalance, &r.FinalPortfolio,
			&r.ProfitLoss, &r.MaxDrawdown, &r.NumLong, &r.NumShort, &r.NumHold, &reason, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.Reason = domain.TerminationReason(reason)
		results = append(results, &r)
	}
	return results, rows.Err()
}
