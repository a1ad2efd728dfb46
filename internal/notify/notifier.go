// Package notify tells admins about new orders over Telegram and registers
// admin chats when they talk to the bot.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

type Notifier interface {
	NotifyAdmins(ctx context.Context, order *models.Order) error
}

// BotAPI is the subset of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type ChatStore interface {
	ListAdminChats(ctx context.Context) ([]models.AdminChat, error)
	FindAdminChat(ctx context.Context, tag string, chatID int64) (*models.AdminChat, error)
	CreateAdminChat(ctx context.Context, chat *models.AdminChat) error
	GetUserByTgTag(ctx context.Context, tag string) (*models.User, error)
}

type TelegramBot struct {
	api   BotAPI
	store ChatStore
}

func NewTelegramBot(api BotAPI, store ChatStore) *TelegramBot {
	return &TelegramBot{api: api, store: store}
}

// NotifyAdmins sends the order summary to every registered admin chat.
// Failed sends are logged and joined into the returned error.
func (b *TelegramBot) NotifyAdmins(ctx context.Context, order *models.Order) error {
	l := logging.FromContext(ctx).With("component", "notify.telegram", "order_id", order.ID)

	chats, err := b.store.ListAdminChats(ctx)
	if err != nil {
		return fmt.Errorf("list admin chats: %w", err)
	}
	if len(chats) == 0 {
		l.Warn("notify_admins_skipped", "reason", "no admin chats registered")
		return nil
	}

	text := OrderMessage(order)
	var errs []error
	for _, chat := range chats {
		msg := tgbotapi.NewMessage(chat.ChatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := b.api.Send(msg); err != nil {
			l.Error("notify_admin_failed", "chat_id", chat.ChatID, "tg_tag", chat.TgTag, "error", err)
			errs = append(errs, fmt.Errorf("chat %d: %w", chat.ChatID, err))
			continue
		}
		l.Info("notify_admin_sent", "chat_id", chat.ChatID)
	}
	return errors.Join(errs...)
}

// OrderMessage renders the Markdown admin notification.
func OrderMessage(order *models.Order) string {
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s) }

	var sb strings.Builder
	sb.WriteString("*New Order Received!*\n")
	fmt.Fprintf(&sb, "Order ID: %s\n", order.ID)
	fmt.Fprintf(&sb, "User: %s\n", esc(order.TgTag))
	fmt.Fprintf(&sb, "Total Price: %s\n", order.Price.StringFixed(2))
	fmt.Fprintf(&sb, "Created At: %s UTC\n", order.CreatedAt.UTC().Format(time.DateTime))
	sb.WriteString("Products:\n")
	for _, line := range order.OrderProducts {
		name := "Unknown"
		if line.Product != nil {
			name = line.Product.EnName
		}
		fmt.Fprintf(&sb, "- %s (Qty: %d)\n", esc(name), line.Quantity)
	}
	return sb.String()
}

// Noop is used when no bot token is configured.
type Noop struct{}

func (Noop) NotifyAdmins(ctx context.Context, order *models.Order) error {
	logging.FromContext(ctx).Warn("notify_admins_skipped", "reason", "telegram bot is not configured", "order_id", order.ID)
	return nil
}

var _ Notifier = (*TelegramBot)(nil)
var _ Notifier = Noop{}

func logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx).With("component", "notify.telegram")
}
