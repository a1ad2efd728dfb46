package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func newRepo(t *testing.T) (*repo.GormRepo, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return &repo.GormRepo{DB: db}, db
}

type fakeNotifier struct {
	mu     sync.Mutex
	orders []*models.Order
	err    error
}

func (f *fakeNotifier) NotifyAdmins(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, o)
	return f.err
}

func (f *fakeNotifier) calls() []*models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Order(nil), f.orders...)
}

type event struct {
	topic, key string
	body       map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event
	fail   bool
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, e any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker down")
	}
	body, _ := e.(map[string]any)
	f.events = append(f.events, event{topic: topic, key: key, body: body})
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i], _ = e.body["type"].(string)
	}
	return out
}
