package service

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"

	"smc_bot/internal/models"
	"smc_bot/pkg/db"
)

// SignalArchive — архив отправленных сигналов в postgres.
type SignalArchive struct {
	db *db.PgTxManager
}

func NewSignalArchive(m *db.PgTxManager) *SignalArchive {
	return &SignalArchive{db: m}
}

// Insert — уровни целиком уходят в JSONB, остальное — плоскими колонками
// для выборок по символу и тиру.
func (a *SignalArchive) Insert(ctx context.Context, res models.SignalResult) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("SignalArchive.Insert: %w", err)
		}
	}()

	levels, err := sonic.Marshal(res.Levels)
	if err != nil {
		return err
	}

	return a.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO signals (symbol, side, tier, score, levels, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			res.Symbol,
			string(res.Side),
			string(res.Quality.Tier),
			res.Quality.Score,
			levels,
			res.CreatedAt,
		)
		return err
	})
}
