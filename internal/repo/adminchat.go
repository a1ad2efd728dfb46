package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) ListAdminChats(ctx context.Context) ([]models.AdminChat, error) {
	var chats []models.AdminChat
	if err := r.DB.WithContext(ctx).Order("id").Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

// FindAdminChat looks a chat up by handle or by chat id. It returns nil
// without error when neither matches.
func (r *GormRepo) FindAdminChat(ctx context.Context, tag string, chatID int64) (*models.AdminChat, error) {
	var chat models.AdminChat
	err := r.DB.WithContext(ctx).Where("tg_tag = ? OR chat_id = ?", tag, chatID).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *GormRepo) CreateAdminChat(ctx context.Context, chat *models.AdminChat) error {
	return r.DB.WithContext(ctx).Create(chat).Error
}
