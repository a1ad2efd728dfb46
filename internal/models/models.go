package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UaName      string          `gorm:"size:255;not null;index"`
	EnName      string          `gorm:"size:255;not null;index"`
	Description string          `gorm:"type:text;not null;default:''"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;index;index:idx_products_category_price,priority:2"`
	Category    Category        `gorm:"not null;index;index:idx_products_category_price,priority:1"`
	Count       int             `gorm:"not null;default:0;index;check:count >= 0"`
	Likes       int             `gorm:"not null;default:0;index;check:likes >= 0"`
	Image       string          `gorm:"size:3000;not null;default:''"`
	Size        Size            `gorm:"not null;index"`
	Color       Color           `gorm:"not null;index"`
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"size:255;not null"`
	Email    string    `gorm:"size:255;not null;uniqueIndex"`
	Password string    `gorm:"not null"`
	IsAdmin  bool      `gorm:"not null;default:false"`
	Image    *string   `gorm:"size:3000"`
	TgTag    *string   `gorm:"size:255;index"`
}

type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TgTag         string          `gorm:"size:255;not null"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time       `gorm:"not null;index"`
	OrderProducts []OrderProduct  `gorm:"constraint:OnDelete:CASCADE"`
}

type OrderProduct struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Product     *Product        `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity    int             `gorm:"not null;check:quantity > 0"`
	PriceAtTime decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	// Position is the line's index in the submitted order.
	Position    int             `gorm:"not null;default:0"`
}

type UserProductLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_product_like"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_product_like;index"`
	CreatedAt time.Time
}

// AdminChat maps a Telegram chat to the handle of the admin who opened it.
type AdminChat struct {
	ID     uint   `gorm:"primaryKey"`
	ChatID int64  `gorm:"not null;uniqueIndex"`
	TgTag  string `gorm:"size:255;not null;index"`
}

// All lists every model in migration order.
func All() []any {
	return []any{&User{}, &Product{}, &Order{}, &OrderProduct{}, &UserProductLike{}, &AdminChat{}}
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (p *Product) BeforeCreate(*gorm.DB) error         { newID(&p.ID); return nil }
func (u *User) BeforeCreate(*gorm.DB) error            { newID(&u.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error           { newID(&o.ID); return nil }
func (op *OrderProduct) BeforeCreate(*gorm.DB) error   { newID(&op.ID); return nil }
func (l *UserProductLike) BeforeCreate(*gorm.DB) error { newID(&l.ID); return nil }
