package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByTgTag(ctx context.Context, tag string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("LOWER(tg_tag) = ?", strings.ToLower(tag)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string, exclude *uuid.UUID) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Save(u).Error
}

// DeleteUserCascade removes the user with their orders and likes, giving back
// the like counters they contributed. Call it inside Transaction.
func (r *GormRepo) DeleteUserCascade(ctx context.Context, id uuid.UUID) error {
	db := r.DB.WithContext(ctx)

	var liked []uuid.UUID
	if err := db.Model(&models.UserProductLike{}).Where("user_id = ?", id).Pluck("product_id", &liked).Error; err != nil {
		return err
	}
	if err := r.DecrementLikes(ctx, liked...); err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&models.UserProductLike{}).Error; err != nil {
		return err
	}

	orders := db.Model(&models.Order{}).Select("id").Where("user_id = ?", id)
	if err := db.Where("order_id IN (?)", orders).Delete(&models.OrderProduct{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&models.Order{}).Error; err != nil {
		return err
	}

	res := db.Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
