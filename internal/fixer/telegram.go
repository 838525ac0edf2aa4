package fixer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/oplab/lab400/internal/database/repository"
)

// Notifier escalates issues to Telegram. Repeat notifications for the
// same issue fingerprint are suppressed inside the throttle window.
type Notifier struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	log      *slog.Logger
	sent     *repository.NotificationRepo
	throttle time.Duration
}

func NewNotifier(token string, chatID int64, sent *repository.NotificationRepo, throttle time.Duration, log *slog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	if throttle <= 0 {
		throttle = time.Hour
	}
	return &Notifier{bot: bot, chatID: chatID, log: log, sent: sent, throttle: throttle}, nil
}

// Notify sends the message unless the fingerprint was already notified
// within the throttle window. Returns whether a message went out.
func (n *Notifier) Notify(ctx context.Context, fingerprint, text string) (bool, error) {
	last, err := n.sent.LastSuccess(ctx, fingerprint)
	if err != nil {
		return false, err
	}
	if last != nil && time.Since(*last) < n.throttle {
		n.log.Debug("notification throttled", "fingerprint", fingerprint)
		return false, nil
	}

	_, sendErr := n.bot.Send(tgbotapi.NewMessage(n.chatID, text))
	if err := n.sent.Record(ctx, fingerprint, "telegram", text, sendErr == nil); err != nil {
		n.log.Error("record notification", "error", err)
	}
	if sendErr != nil {
		return false, fmt.Errorf("telegram send: %w", sendErr)
	}
	return true, nil
}
