package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"smc_bot/internal/models"
	"smc_bot/pkg/logger"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		if err := t.handleStart(ctx, chatID); err != nil {
			logger.Error("handleStart error: %v", err)
		}
	case "stop":
		if err := t.handleStop(ctx, chatID); err != nil {
			logger.Error("handleStop error: %v", err)
		}
	case "mode":
		if err := t.handleMode(ctx, chatID, msg.CommandArguments()); err != nil {
			logger.Error("handleMode error: %v", err)
		}
	case "status":
		if err := t.handleStatus(ctx, chatID); err != nil {
			logger.Error("handleStatus error: %v", err)
		}
	default:
		// неизвестные команды молча игнорируем
	}
}

func (t *Telegram) handleStart(ctx context.Context, chatID int64) error {
	created, err := t.repo.Subscribe(ctx, chatID, t.defaultTier)
	if err != nil {
		_, _ = t.Send(ctx, chatID, "Не получилось подписать, попробуй ещё раз /start")
		return err
	}

	if !created {
		_, err = t.Send(ctx, chatID, "Ты уже подписан. /status — состояние сканера.")
		return err
	}

	text := "Привет! Я сканер SMC-сетапов на фьючерсах Binance.\n\n" +
		"Буду присылать сигналы Sweep → Displacement → FVG.\n\n" +
		"Команды:\n" +
		"/mode B|A|A+ — минимальный тир сигналов\n" +
		"/status — состояние сканера\n" +
		"/stop — отписаться"
	_, err = t.Send(ctx, chatID, text)
	return err
}

func (t *Telegram) handleStop(ctx context.Context, chatID int64) error {
	removed, err := t.repo.Unsubscribe(ctx, chatID)
	if err != nil {
		return err
	}
	if !removed {
		_, err = t.Send(ctx, chatID, "Ты и не был подписан. /start — подписаться.")
		return err
	}
	_, err = t.Send(ctx, chatID, "Отписал. Вернуться — /start.")
	return err
}

func (t *Telegram) handleMode(ctx context.Context, chatID int64, args string) error {
	arg := strings.TrimSpace(args)
	tier, ok := models.ParseTier(arg)
	if !ok || tier == models.TierNone {
		_, err := t.Send(ctx, chatID, "Так: /mode B, /mode A или /mode A+")
		return err
	}

	if err := t.repo.SetTier(ctx, chatID, tier); err != nil {
		_, _ = t.Send(ctx, chatID, "Сначала подпишись: /start")
		return err
	}

	_, err := t.SendF(ctx, chatID, "Ок, шлю сигналы от тира %s и выше.", tier)
	return err
}

func (t *Telegram) handleStatus(ctx context.Context, chatID int64) error {
	st := t.manager.Status()

	last := "ещё не было"
	if !st.LastSignal.IsZero() {
		last = st.LastSignal.Format("2006-01-02 15:04:05")
	}

	sub, subscribed := t.repo.Get(chatID)
	mode := "не подписан"
	if subscribed {
		mode = string(sub.MinTier)
	}

	text := fmt.Sprintf(
		"Сканер: %s\n"+
			"Пар в работе: %d\n"+
			"Сигналов отправлено: %d\n"+
			"Последний сигнал: %s\n"+
			"Твой режим: %s",
		uptime(st.StartedAt), st.Symbols, st.SignalsSent, last, mode,
	)
	_, err := t.Send(ctx, chatID, text)
	return err
}

func uptime(started time.Time) string {
	if started.IsZero() {
		return "не запущен"
	}
	return fmt.Sprintf("работает %s", time.Since(started).Round(time.Second))
}
