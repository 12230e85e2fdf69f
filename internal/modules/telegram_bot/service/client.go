package service

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"smc_bot/internal/models"
	"smc_bot/internal/modules/config"
	"smc_bot/internal/modules/telegram_bot/service/pg"
	"smc_bot/internal/runner"
	"smc_bot/pkg/logger"
)

// Telegram — команды подписчиков и рассылка сигналов.
type Telegram struct {
	bot     *tgbot.BotAPI
	cfg     *config.Config
	repo    *pg.Subscriber
	manager *runner.Manager

	defaultTier models.Tier
}

func NewTelegram(cfg *config.Config, repo *pg.Subscriber, manager *runner.Manager) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}

	defaultTier, ok := models.ParseTier(cfg.MinTier)
	if !ok {
		defaultTier = models.TierB
	}

	return &Telegram{
		bot:         b,
		cfg:         cfg,
		repo:        repo,
		manager:     manager,
		defaultTier: defaultTier,
	}, nil
}

func (t *Telegram) Send(ctx context.Context, chatID int64, msg string) (tgbot.Message, error) {
	return t.bot.Send(tgbot.NewMessage(chatID, msg))
}

func (t *Telegram) SendF(ctx context.Context, chatID int64, format string, args ...any) (tgbot.Message, error) {
	return t.Send(ctx, chatID, fmt.Sprintf(format, args...))
}

// Start — прогрев кэша подписчиков и цикл обновлений.
func (t *Telegram) Start(ctx context.Context) error {
	if err := t.repo.Load(ctx); err != nil {
		return err
	}
	logger.Info("telegram: %d subscribers loaded", len(t.repo.All()))

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(ctx, update)
			}
		}
	}()

	return nil
}

func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
}
