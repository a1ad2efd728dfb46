// Package catalog turns a product filter, sort and page request into a
// bounded gorm query and runs it together with the matching total count.
package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// Filter constrains the product set. Zero values leave a field unconstrained.
type Filter struct {
	UaName      string
	EnName      string
	Description string

	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal

	Category *models.Category
	Size     *models.Size
	Color    *models.Color

	// Count is a minimum stock.
	Count *int

	MinLikes *int
	MaxLikes *int

	// IsLiked only applies when the caller is known.
	IsLiked *bool
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// Scope applies every supplied predicate, ANDed together.
func (f Filter) Scope(callerID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.UaName != "" {
			q = q.Where(`LOWER(products.ua_name) LIKE ? ESCAPE '\'`, containsPattern(f.UaName))
		}
		if f.EnName != "" {
			q = q.Where(`LOWER(products.en_name) LIKE ? ESCAPE '\'`, containsPattern(f.EnName))
		}
		if f.Description != "" {
			q = q.Where(`LOWER(products.description) LIKE ? ESCAPE '\'`, containsPattern(f.Description))
		}
		if f.MinPrice != nil {
			q = q.Where("products.price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			q = q.Where("products.price <= ?", *f.MaxPrice)
		}
		if f.Category != nil {
			q = q.Where("products.category = ?", int(*f.Category))
		}
		if f.Count != nil {
			q = q.Where("products.count >= ?", *f.Count)
		}
		if f.MinLikes != nil {
			q = q.Where("products.likes >= ?", *f.MinLikes)
		}
		if f.MaxLikes != nil {
			q = q.Where("products.likes <= ?", *f.MaxLikes)
		}
		if f.Size != nil {
			q = q.Where("products.size = ?", int(*f.Size))
		}
		if f.Color != nil {
			q = q.Where("products.color = ?", int(*f.Color))
		}
		if f.IsLiked != nil && callerID != nil {
			liked := "EXISTS (SELECT 1 FROM user_product_likes l WHERE l.product_id = products.id AND l.user_id = ?)"
			if !*f.IsLiked {
				liked = "NOT " + liked
			}
			q = q.Where(liked, *callerID)
		}
		return q
	}
}
