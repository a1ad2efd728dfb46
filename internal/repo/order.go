package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Omit("OrderProducts").Create(order).Error
}

func (r *GormRepo) CreateOrderProducts(ctx context.Context, lines []models.OrderProduct) error {
	if len(lines) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Omit("Product").Create(&lines).Error
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.Preload("OrderProducts", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_products.position").Order("order_products.id")
	}).Preload("OrderProducts.Product")
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Scopes(withLines).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := r.DB.WithContext(ctx).Scopes(withLines).Order("created_at DESC").Order("id").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := []models.Order{}
	if err := r.DB.WithContext(ctx).Scopes(withLines).Where("user_id = ?", userID).
		Order("created_at DESC").Order("id").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) CountOrders(ctx context.Context) (orders, lines int64, err error) {
	if err = r.DB.WithContext(ctx).Model(&models.Order{}).Count(&orders).Error; err != nil {
		return 0, 0, err
	}
	err = r.DB.WithContext(ctx).Model(&models.OrderProduct{}).Count(&lines).Error
	return orders, lines, err
}
