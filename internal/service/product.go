package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/storage"
)

const productImageFolder = "products"

type ProductInput struct {
	UaName      string
	EnName      string
	Description string
	Price       decimal.Decimal
	Category    models.Category
	Size        models.Size
	Color       models.Color
	Count       int
	// Image is an absolute URL or an existing /uploads/ path. An uploaded
	// file takes precedence.
	Image string
}

type ProductService struct {
	Repo   *repo.GormRepo
	Images storage.ImageStore
	Events mykafka.Publisher
	Index  ProductIndexer
}

func (s *ProductService) Query(ctx context.Context, spec catalog.Spec) (catalog.PagedResult[models.Product], error) {
	return s.Repo.QueryProducts(ctx, spec)
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

func validateProduct(in *ProductInput) error {
	in.UaName = strings.TrimSpace(in.UaName)
	in.EnName = strings.TrimSpace(in.EnName)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)

	var fe FieldErrors
	if in.UaName == "" {
		fe.Add("uaName", "is required")
	} else if len(in.UaName) > 255 {
		fe.Add("uaName", "must be at most 255 characters")
	}
	if in.EnName == "" {
		fe.Add("enName", "is required")
	} else if len(in.EnName) > 255 {
		fe.Add("enName", "must be at most 255 characters")
	}
	if in.Price.IsNegative() {
		fe.Add("price", "must be greater than or equal to 0")
	}
	if in.Count < 0 {
		fe.Add("count", "must be greater than or equal to 0")
	}
	if !in.Category.Valid() {
		fe.Add("category", "is invalid")
	}
	if !in.Size.Valid() {
		fe.Add("size", "is invalid")
	}
	if !in.Color.Valid() {
		fe.Add("color", "is invalid")
	}
	if len(in.Image) > 3000 {
		fe.Add("image", "must be at most 3000 characters")
	}
	return fe.Err()
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *ProductService) saveImage(ctx context.Context, u *storage.Upload) (string, error) {
	path, err := s.Images.Save(ctx, *u, productImageFolder)
	if errors.Is(err, storage.ErrInvalidImage) {
		return "", FieldErrors{{Field: "imageFile", Message: err.Error()}}
	}
	return path, err
}

// dropImage deletes a stored image, logging instead of failing.
func dropImage(ctx context.Context, images storage.ImageStore, path string) {
	if path == "" || images == nil || !images.Owns(path) {
		return
	}
	if _, err := images.Delete(ctx, path); err != nil {
		logging.FromContext(ctx).Warn("image_delete_failed", "path", path, "error", err)
	}
}

func (s *ProductService) ensureUniqueName(ctx context.Context, in ProductInput, exclude *uuid.UUID) error {
	taken, err := s.Repo.ProductNameTaken(ctx, in.EnName, in.UaName, exclude)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: product already exists", ErrConflict)
	}
	return nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput, upload *storage.Upload) (*models.Product, error) {
	if err := validateProduct(&in); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, in, nil); err != nil {
		return nil, err
	}

	image := ""
	switch {
	case upload != nil:
		path, err := s.saveImage(ctx, upload)
		if err != nil {
			return nil, err
		}
		image = path
	case in.Image != "" && isAbsoluteHTTP(in.Image):
		image = in.Image
	case in.Image != "":
		return nil, FieldErrors{{Field: "image", Message: "must be an absolute http or https URL"}}
	default:
		return nil, FieldErrors{{Field: "image", Message: "image required: upload a file or provide a URL"}}
	}

	p := &models.Product{
		UaName:      in.UaName,
		EnName:      in.EnName,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Size:        in.Size,
		Color:       in.Color,
		Count:       in.Count,
		Image:       image,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		if upload != nil {
			dropImage(ctx, s.Images, image)
		}
		return nil, err
	}

	s.sync(ctx, "product_created", p)
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput, upload *storage.Upload) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if err := validateProduct(&in); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, in, &id); err != nil {
		return nil, err
	}

	oldImage := p.Image
	switch {
	case upload != nil:
		path, err := s.saveImage(ctx, upload)
		if err != nil {
			return nil, err
		}
		p.Image = path
	case in.Image != "" && in.Image != oldImage:
		if !strings.HasPrefix(in.Image, storage.URLPrefix) && !isAbsoluteHTTP(in.Image) {
			return nil, FieldErrors{{Field: "image", Message: "must start with /uploads/ or be an absolute URL"}}
		}
		p.Image = in.Image
	}

	p.UaName = in.UaName
	p.EnName = in.EnName
	p.Description = in.Description
	p.Price = in.Price
	p.Category = in.Category
	p.Size = in.Size
	p.Color = in.Color
	p.Count = in.Count

	if err := s.Repo.UpdateProduct(ctx, p); err != nil {
		if upload != nil {
			dropImage(ctx, s.Images, p.Image)
		}
		return nil, err
	}
	if oldImage != p.Image {
		dropImage(ctx, s.Images, oldImage)
	}

	s.sync(ctx, "product_updated", p)
	return p, nil
}

// DeleteProduct refuses while any order line references the product.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	var image string
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		p, err := tx.GetProduct(ctx, id)
		if err != nil {
			return notFound(err, "product")
		}
		n, err := tx.CountOrderLines(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrReferencedByOrder
		}
		image = p.Image
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		return err
	}

	dropImage(ctx, s.Images, image)
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			metrics.EventsFailed.WithLabelValues("search").Inc()
			logging.FromContext(ctx).Warn("search_delete_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProducts, id.String(), map[string]any{"type": "product_deleted", "productID": id})
	return nil
}

func (s *ProductService) sync(ctx context.Context, eventType string, p *models.Product) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, *p); err != nil {
			metrics.EventsFailed.WithLabelValues("search").Inc()
			logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProducts, p.ID.String(), map[string]any{
		"type":      eventType,
		"productID": p.ID,
		"enName":    p.EnName,
		"price":     p.Price,
	})
}
