package service

import (
	"context"

	"smc_bot/internal/models"
	"smc_bot/pkg/logger"
)

// Broadcast — рассылка сигнала всем подписчикам с учётом их планки тира.
// Ошибка доставки одному чату не мешает остальным.
func (t *Telegram) Broadcast(ctx context.Context, res models.SignalResult) {
	subs := t.repo.All()
	if len(subs) == 0 {
		return
	}

	sent := 0
	for _, sub := range subs {
		if res.Quality.Tier.Rank() < sub.MinTier.Rank() {
			continue
		}
		if _, err := t.Send(ctx, sub.ChatID, res.Message); err != nil {
			logger.Error("telegram: broadcast to %d: %v", sub.ChatID, err)
			continue
		}
		sent++
	}

	logger.Info("telegram: %s %s delivered to %d/%d chats",
		res.Symbol, res.Quality.Tier, sent, len(subs))
}
