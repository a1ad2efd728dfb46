package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

type PageParams struct {
	Page     int
	PageSize int
}

// Normalize clamps the page to >= 1 and the size into [1, util.MaxPageSize],
// defaulting it to util.DefaultPageSize.
func (p PageParams) Normalize() PageParams {
	offset, limit := util.Calculate(p.Page, p.PageSize)
	return PageParams{Page: offset/limit + 1, PageSize: limit}
}

func (p PageParams) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

type PagedResult[T any] struct {
	Data       []T
	TotalCount int64
	Page       int
	PageSize   int
}

func (r PagedResult[T]) TotalPages() int64 {
	return util.TotalPages(r.TotalCount, r.PageSize)
}

type Spec struct {
	Filter   Filter
	Sort     SortParams
	Page     PageParams
	CallerID *uuid.UUID
}

// Query counts the filtered products and fetches the requested page. An empty
// match skips the row fetch.
func Query(ctx context.Context, db *gorm.DB, spec Spec) (PagedResult[models.Product], error) {
	page := spec.Page.Normalize()
	res := PagedResult[models.Product]{Data: []models.Product{}, Page: page.Page, PageSize: page.PageSize}

	filtered := func() *gorm.DB {
		return db.WithContext(ctx).Model(&models.Product{}).Scopes(spec.Filter.Scope(spec.CallerID))
	}

	if err := filtered().Count(&res.TotalCount).Error; err != nil {
		return res, err
	}
	if res.TotalCount == 0 || int64(page.Offset()) >= res.TotalCount {
		return res, nil
	}

	if err := filtered().
		Scopes(spec.Sort.Scope()).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&res.Data).Error; err != nil {
		return res, err
	}
	return res, nil
}
