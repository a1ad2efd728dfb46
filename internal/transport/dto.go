// Package transport holds the HTTP request and response shapes and the explicit
// mappings between them and the domain models.
package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/search"
)

type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	UaName      string          `json:"uaName"`
	EnName      string          `json:"enName"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    models.Category `json:"category"`
	Count       int             `json:"count"`
	Likes       int             `json:"likes"`
	Image       string          `json:"image"`
	Size        models.Size     `json:"size"`
	Color       models.Color    `json:"color"`
}

type PagedProductsResponse struct {
	Data       []ProductResponse `json:"data"`
	TotalCount int64             `json:"totalCount"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int64             `json:"totalPages"`
}

type SearchResponse struct {
	Total int64             `json:"total"`
	Items []search.Document `json:"items"`
}

// ProductForm is accepted as JSON or multipart form; the multipart variant
// may carry an imageFile part.
type ProductForm struct {
	UaName      string `json:"uaName" form:"uaName" validate:"required,max=255"`
	EnName      string `json:"enName" form:"enName" validate:"required,max=255"`
	Description string `json:"description" form:"description" validate:"max=5000"`
	Price       string `json:"price" form:"price" validate:"required,money"`
	Category    string `json:"category" form:"category" validate:"required,category"`
	Size        string `json:"size" form:"size" validate:"required,size"`
	Color       string `json:"color" form:"color" validate:"required,color"`
	Count       int    `json:"count" form:"count" validate:"gte=0"`
	Image       string `json:"image" form:"image" validate:"max=3000"`
}

type UserResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
	Image   *string   `json:"image"`
	TgTag   *string   `json:"tgTag"`
}

type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Image    *string `json:"image" validate:"omitempty,max=3000"`
	TgTag    *string `json:"tgTag" validate:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    uuid.UUID `json:"userId"`
	IsAdmin   bool      `json:"isAdmin"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

// UpdateUserRequest replaces the profile. An empty image keeps the current
// one; an empty tgTag clears it.
type UpdateUserRequest struct {
	Name  string `json:"name" form:"name" validate:"required,max=255"`
	Email string `json:"email" form:"email" validate:"required,email,max=255"`
	Image string `json:"image" form:"image" validate:"max=3000"`
	TgTag string `json:"tgTag" form:"tgTag" validate:"max=255"`
}

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

type OrderRequest struct {
	TgTag    string             `json:"tgTag" validate:"max=255"`
	Price    decimal.Decimal    `json:"price"`
	Products []OrderLineRequest `json:"products" validate:"required,min=1,dive"`
}

type OrderLineResponse struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	PriceAtTime decimal.Decimal `json:"priceAtTime"`
}

type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	TgTag         string              `json:"tgTag"`
	Price         decimal.Decimal     `json:"price"`
	UserID        uuid.UUID           `json:"userId"`
	CreatedAt     time.Time           `json:"createdAt"`
	OrderProducts []OrderLineResponse `json:"orderProducts"`
}
