package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/storage"
)

const userImageFolder = "users"

type UpdateUserInput struct {
	Name  string
	Email string
	Image *string
	TgTag *string
}

type UserService struct {
	Repo   *repo.GormRepo
	Images storage.ImageStore
	Events mykafka.Publisher
}

func (s *UserService) GetMe(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (s *UserService) UpdateMe(ctx context.Context, id uuid.UUID, in UpdateUserInput, upload *storage.Upload) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	var fe FieldErrors
	if in.Name == "" {
		fe.Add("name", "is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		fe.Add("email", "must be a valid email")
	}
	if img := optional(in.Image); img != nil && upload == nil {
		if !strings.HasPrefix(*img, storage.URLPrefix) && !isAbsoluteHTTP(*img) {
			fe.Add("image", "must start with /uploads/ or be an absolute URL")
		}
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	if in.Email != u.Email {
		taken, err := s.Repo.EmailTaken(ctx, in.Email, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: email is already in use", ErrConflict)
		}
	}

	var oldImage string
	if u.Image != nil {
		oldImage = *u.Image
	}
	switch {
	case upload != nil:
		path, err := s.Images.Save(ctx, *upload, userImageFolder)
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, FieldErrors{{Field: "imageFile", Message: err.Error()}}
		}
		if err != nil {
			return nil, err
		}
		u.Image = &path
	case in.Image != nil:
		u.Image = optional(in.Image)
	}

	u.Name = in.Name
	u.Email = in.Email
	u.TgTag = normalizeTag(in.TgTag)

	if err := s.Repo.SaveUser(ctx, u); err != nil {
		if upload != nil {
			dropImage(ctx, s.Images, *u.Image)
		}
		return nil, err
	}
	if newImage := deref(u.Image); oldImage != "" && oldImage != newImage {
		dropImage(ctx, s.Images, oldImage)
	}
	return u, nil
}

// DeleteMe removes the account with its orders and likes.
func (s *UserService) DeleteMe(ctx context.Context, id uuid.UUID) error {
	var image string
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		u, err := tx.GetUser(ctx, id)
		if err != nil {
			return notFound(err, "user")
		}
		image = deref(u.Image)
		return tx.DeleteUserCascade(ctx, id)
	})
	if err != nil {
		return err
	}

	dropImage(ctx, s.Images, image)
	publish(ctx, s.Events, mykafka.TopicUsers, id.String(), map[string]any{"type": "user_deleted", "userID": id})
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
