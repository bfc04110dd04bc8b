package port

import (
	"context"
	"time"

	"github.com/Phaust94/oto-parser/internal/core/domain"
)

// RunLogPort хранит журнал запусков: итоговые счетчики каждого прогона
// и время последнего завершенного для рынка.
type RunLogPort interface {
	RecordRun(ctx context.Context, market string, kind string, stats domain.RunStats) error
	LastRun(ctx context.Context, market string, kind string) (time.Time, error)
}
