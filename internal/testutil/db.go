// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
)

// NewDB opens a migrated sqlite database in a temp dir with foreign keys on.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	gdb, err := gorm.Open(sqlite.Open(dsn), db.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(context.Background(), gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func Price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateProduct inserts a product, filling required fields the caller left empty.
func CreateProduct(t testing.TB, gdb *gorm.DB, p models.Product) models.Product {
	t.Helper()

	if p.UaName == "" {
		p.UaName = "ua-" + p.EnName
	}
	if p.EnName == "" {
		p.EnName = "en-" + p.UaName
	}
	if p.Image == "" {
		p.Image = "https://cdn.example.com/" + p.EnName + ".png"
	}
	if err := gdb.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

// CreateUser inserts a user whose password is "password".
func CreateUser(t testing.TB, gdb *gorm.DB, u models.User) models.User {
	t.Helper()

	if u.Name == "" {
		u.Name = "user"
	}
	if u.Password == "" {
		h, err := hash.HashPasswordCost("password", bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		u.Password = h
	}
	if err := gdb.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func StrPtr(s string) *string { return &s }
