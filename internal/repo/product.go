package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	products := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormRepo) QueryProducts(ctx context.Context, spec catalog.Spec) (catalog.PagedResult[models.Product], error) {
	return catalog.Query(ctx, r.DB, spec)
}

// ProductNameTaken reports whether another product already uses either name,
// compared case-insensitively.
func (r *GormRepo) ProductNameTaken(ctx context.Context, enName, uaName string, exclude *uuid.UUID) (bool, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("LOWER(en_name) = ? OR LOWER(ua_name) = ?", strings.ToLower(enName), strings.ToLower(uaName))
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

// productEditable lists the columns an admin update writes. The like
// counter belongs to IncrementLikes/DecrementLikes only.
var productEditable = []string{"ua_name", "en_name", "description", "price", "category", "size", "color", "count", "image"}

// UpdateProduct writes the editable columns of p and reloads the row.
func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	db := r.DB.WithContext(ctx)
	res := db.Model(&models.Product{}).Where("id = ?", p.ID).Select(productEditable).Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.Where("id = ?", p.ID).First(p).Error
}

func (r *GormRepo) CountOrderLines(ctx context.Context, productID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.OrderProduct{}).Where("product_id = ?", productID).Count(&n).Error
	return n, err
}

// DeleteProduct removes the product and its likes.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("product_id = ?", id).Delete(&models.UserProductLike{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) IncrementLikes(ctx context.Context, productID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).
		UpdateColumn("likes", gorm.Expr("likes + 1")).Error
}

func (r *GormRepo) DecrementLikes(ctx context.Context, productIDs ...uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&models.Product{}).Where("id IN ?", productIDs).
		UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END")).Error
}
