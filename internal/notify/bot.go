package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	roleAdmin = "Admin"
	roleUser  = "User"
)

// StartListening consumes bot updates until ctx is done.
func (b *TelegramBot) StartListening(ctx context.Context) {
	l := logger(ctx)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)
	defer b.api.StopReceivingUpdates()

	l.Info("telegram_listening")
	for {
		select {
		case <-ctx.Done():
			l.Info("telegram_stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := b.HandleUpdate(ctx, update); err != nil {
				l.Error("telegram_update_failed", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

// HandleUpdate answers /start: it tells the sender their role and registers
// the chat for notifications when the sender is an admin.
func (b *TelegramBot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || !msg.IsCommand() || msg.Command() != "start" {
		return nil
	}
	chatID := msg.Chat.ID

	if msg.From.UserName == "" {
		return b.reply(chatID, "Please set a Telegram username first, then send /start again.")
	}
	tag := "@" + msg.From.UserName

	user, err := b.store.GetUserByTgTag(ctx, tag)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return b.reply(chatID, "User not found. Please ensure your Telegram tag is registered in the system.")
	}
	if err != nil {
		return fmt.Errorf("find user by tag: %w", err)
	}

	role := roleUser
	if user.IsAdmin {
		role = roleAdmin
		if err := b.registerAdminChat(ctx, tag, chatID); err != nil {
			return err
		}
	}
	return b.reply(chatID, fmt.Sprintf("Hello, %s! Your role is: %s", tag, role))
}

func (b *TelegramBot) registerAdminChat(ctx context.Context, tag string, chatID int64) error {
	existing, err := b.store.FindAdminChat(ctx, tag, chatID)
	if err != nil {
		return fmt.Errorf("find admin chat: %w", err)
	}
	if existing != nil {
		return nil
	}
	if err := b.store.CreateAdminChat(ctx, &models.AdminChat{ChatID: chatID, TgTag: tag}); err != nil {
		return fmt.Errorf("create admin chat: %w", err)
	}
	logger(ctx).Info("admin_chat_registered", "chat_id", chatID, "tg_tag", tag)
	return nil
}

func (b *TelegramBot) reply(chatID int64, text string) error {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}
