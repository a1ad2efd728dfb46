package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type LikeService struct {
	Repo *repo.GormRepo
}

// Like records the like and bumps the product counter in one transaction.
// Liking twice is a conflict and leaves the counter alone.
func (s *LikeService) Like(ctx context.Context, userID, productID uuid.UUID) error {
	return s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.GetProduct(ctx, productID); err != nil {
			return notFound(err, "product")
		}
		exists, err := tx.LikeExists(ctx, userID, productID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: product already liked", ErrConflict)
		}
		if err := tx.CreateLike(ctx, &models.UserProductLike{UserID: userID, ProductID: productID}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: product already liked", ErrConflict)
			}
			return err
		}
		return tx.IncrementLikes(ctx, productID)
	})
}

func (s *LikeService) Unlike(ctx context.Context, userID, productID uuid.UUID) error {
	return s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.DeleteLike(ctx, userID, productID); err != nil {
			return notFound(err, "like")
		}
		return tx.DecrementLikes(ctx, productID)
	})
}
