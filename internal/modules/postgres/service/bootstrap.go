package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"smc_bot/pkg/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS subscribers (
	chat_id    BIGINT PRIMARY KEY,
	min_tier   TEXT NOT NULL DEFAULT 'B',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS signals (
	id         BIGSERIAL PRIMARY KEY,
	symbol     TEXT NOT NULL,
	side       TEXT NOT NULL,
	tier       TEXT NOT NULL,
	score      INT NOT NULL,
	levels     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS signals_symbol_created_at_idx
	ON signals (symbol, created_at DESC);
`

// Bootstrap — идемпотентное создание схемы на старте.
func Bootstrap(ctx context.Context, m *db.PgTxManager) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Bootstrap: %w", err)
		}
	}()

	return m.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, schema)
		return err
	})
}
