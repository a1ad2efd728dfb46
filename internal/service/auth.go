package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	minPasswordLen   = 6
	maxPasswordBytes = 72
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Image    *string
	TgTag    *string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Issuer
	Events mykafka.Publisher
	// AdminEmails are granted the admin role on registration.
	AdminEmails []string
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// normalizeTag trims the handle and makes sure it starts with "@".
// An empty handle becomes nil.
func normalizeTag(tag *string) *string {
	if tag == nil {
		return nil
	}
	t := strings.TrimSpace(*tag)
	if t == "" || t == "@" {
		return nil
	}
	if !strings.HasPrefix(t, "@") {
		t = "@" + t
	}
	return &t
}

func optional(s *string) *string {
	if s == nil || blank(*s) {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func (s *AuthService) isAdminEmail(email string) bool {
	for _, e := range s.AdminEmails {
		if normalizeEmail(e) == email {
			return true
		}
	}
	return false
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	var fe FieldErrors
	if in.Name == "" {
		fe.Add("name", "is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		fe.Add("email", "must be a valid email")
	}
	if len(in.Password) < minPasswordLen {
		fe.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	} else if len(in.Password) > maxPasswordBytes {
		fe.Add("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	taken, err := s.Repo.EmailTaken(ctx, in.Email, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: user with this email already exists", ErrConflict)
	}

	hashed, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		IsAdmin:  s.isAdminEmail(in.Email),
		Image:    optional(in.Image),
		TgTag:    normalizeTag(in.TgTag),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: user with this email already exists", ErrConflict)
		}
		return nil, err
	}

	logging.FromContext(ctx).Info("user_registered", "user_id", user.ID, "admin", user.IsAdmin)
	publish(ctx, s.Events, mykafka.TopicUsers, user.ID.String(), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})
	return user, nil
}

// Login checks the credentials and issues an access token. Unknown email and
// wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Repo.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}
