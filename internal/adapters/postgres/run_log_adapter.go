package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// RunLogRepository реализует RunLogPort для PostgreSQL: журнал
// завершенных прогонов со счетчиками.
type RunLogRepository struct {
	dbPool *pgxpool.Pool
}

// NewRunLogRepository создает новый экземпляр RunLogRepository.
func NewRunLogRepository(dbPool *pgxpool.Pool) (*RunLogRepository, error) {
	if dbPool == nil {
		return nil, fmt.Errorf("run log repository: dbPool cannot be nil")
	}
	return &RunLogRepository{dbPool: dbPool}, nil
}

// RecordRun дописывает итог одного прогона в журнал.
func (r *RunLogRepository) RecordRun(ctx context.Context, market string, kind string, stats domain.RunStats) error {
	query := `
        INSERT INTO watcher_runs (market, kind, processed, alive, dead, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.dbPool.Exec(ctx, query, market, kind, stats.Processed, stats.Alive, stats.Dead, stats.FinishedAt)
	if err != nil {
		return fmt.Errorf("error recording '%s' run for market '%s': %w", kind, market, err)
	}
	log.Printf("RunLogRepo: Recorded '%s' run for market '%s'\n", kind, market)
	return nil
}

// LastRun возвращает время последнего завершенного прогона данного вида.
// Отсутствие записей - нулевое время без ошибки.
func (r *RunLogRepository) LastRun(ctx context.Context, market string, kind string) (time.Time, error) {
	var finishedAt time.Time
	query := `
        SELECT finished_at FROM watcher_runs
        WHERE market = $1 AND kind = $2
        ORDER BY finished_at DESC
        LIMIT 1
    `
	err := r.dbPool.QueryRow(ctx, query, market, kind).Scan(&finishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("error querying last '%s' run for market '%s': %w", kind, market, err)
	}
	return finishedAt, nil
}

// CREATE TABLE IF NOT EXISTS watcher_runs (
//     id BIGSERIAL PRIMARY KEY,
//     market VARCHAR(64) NOT NULL,
//     kind VARCHAR(32) NOT NULL,
//     processed INT NOT NULL DEFAULT 0,
//     alive INT NOT NULL DEFAULT 0,
//     dead INT NOT NULL DEFAULT 0,
//     finished_at TIMESTAMPTZ NOT NULL
// );

// CREATE INDEX IF NOT EXISTS idx_watcher_runs_market_kind ON watcher_runs(market, kind);
