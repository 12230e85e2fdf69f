package pg

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"smc_bot/internal/models"
	"smc_bot/pkg/db"
)

// Subscriber — репозиторий подписчиков: postgres как источник правды,
// in-memory кэш для горячего пути брокаста.
type Subscriber struct {
	db *db.PgTxManager

	mu   sync.RWMutex
	data map[int64]models.Subscriber
}

func NewSubscriber(m *db.PgTxManager) *Subscriber {
	return &Subscriber{
		db:   m,
		data: make(map[int64]models.Subscriber),
	}
}

// Load — прогрев кэша на старте.
func (s *Subscriber) Load(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Load: %w", err)
		}
	}()

	var subs []models.Subscriber
	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctxTx,
			`SELECT chat_id, min_tier, created_at FROM subscribers`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var sub models.Subscriber
			var tier string
			if err := rows.Scan(&sub.ChatID, &tier, &sub.CreatedAt); err != nil {
				return err
			}
			if t, ok := models.ParseTier(tier); ok {
				sub.MinTier = t
			} else {
				sub.MinTier = models.TierB
			}
			subs = append(subs, sub)
		}
		return rows.Err()
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[int64]models.Subscriber, len(subs))
	for _, sub := range subs {
		s.data[sub.ChatID] = sub
	}
	return nil
}

// Subscribe — идемпотентная подписка, created=false если чат уже есть.
func (s *Subscriber) Subscribe(ctx context.Context, chatID int64, minTier models.Tier) (created bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Subscribe: %w", err)
		}
	}()

	s.mu.RLock()
	_, exists := s.data[chatID]
	s.mu.RUnlock()
	if exists {
		return false, nil
	}

	sub := models.Subscriber{
		ChatID:    chatID,
		MinTier:   minTier,
		CreatedAt: time.Now(),
	}

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO subscribers (chat_id, min_tier, created_at)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (chat_id) DO NOTHING`,
			sub.ChatID, string(sub.MinTier), sub.CreatedAt,
		)
		return err
	})
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[chatID] = sub
	return true, nil
}

// Unsubscribe — removed=false если чата не было.
func (s *Subscriber) Unsubscribe(ctx context.Context, chatID int64) (removed bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.Unsubscribe: %w", err)
		}
	}()

	s.mu.RLock()
	_, exists := s.data[chatID]
	s.mu.RUnlock()
	if !exists {
		return false, nil
	}

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`DELETE FROM subscribers WHERE chat_id = $1`, chatID)
		return err
	})
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, chatID)
	return true, nil
}

// SetTier — персональная планка тира для чата.
func (s *Subscriber) SetTier(ctx context.Context, chatID int64, tier models.Tier) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SetTier: %w", err)
		}
	}()

	s.mu.RLock()
	sub, exists := s.data[chatID]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("chat %d is not subscribed", chatID)
	}

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`UPDATE subscribers SET min_tier = $2 WHERE chat_id = $1`,
			chatID, string(tier),
		)
		return err
	})
	if err != nil {
		return err
	}

	sub.MinTier = tier
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[chatID] = sub
	return nil
}

// All — снапшот кэша для брокаста.
func (s *Subscriber) All() []models.Subscriber {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Subscriber, 0, len(s.data))
	for _, sub := range s.data {
		out = append(out, sub)
	}
	return out
}

// Get — настройки одного чата.
func (s *Subscriber) Get(chatID int64) (models.Subscriber, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.data[chatID]
	return sub, ok
}
