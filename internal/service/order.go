package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
)

const notifyTimeout = 15 * time.Second

type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type CreateOrderInput struct {
	TgTag    string
	Price    decimal.Decimal
	Products []OrderLineInput
}

type OrderService struct {
	Repo     *repo.GormRepo
	Notifier notify.Notifier
	Events   mykafka.Publisher

	// RecomputeTotal stores the sum of line snapshots instead of the
	// caller-supplied total.
	RecomputeTotal bool
	Retry          db.RetryConfig
	TxOptions      *sql.TxOptions

	wg sync.WaitGroup
}

func validateOrder(in CreateOrderInput) error {
	var fe FieldErrors
	if len(in.Products) == 0 {
		fe.Add("products", "at least one product is required")
	}
	for i, line := range in.Products {
		if line.ProductID == uuid.Nil {
			fe.Add(fmt.Sprintf("products[%d].productId", i), "is required")
		}
		if line.Quantity <= 0 {
			fe.Add(fmt.Sprintf("products[%d].quantity", i), "must be greater than 0")
		}
	}
	if in.Price.IsNegative() {
		fe.Add("price", "must be greater than or equal to 0")
	}
	return fe.Err()
}

func distinctIDs(lines []OrderLineInput) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

// CreateOrder persists the order and its price-snapshot lines atomically,
// then notifies admins in the background. Nothing after the commit can
// fail the call.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create_order", "user_id", userID)

	if err := validateOrder(in); err != nil {
		return nil, err
	}
	ids := distinctIDs(in.Products)

	var order *models.Order
	err := db.RetryWithBackoff(ctx, s.retry(), func() error {
		order = nil
		return s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
			products, err := tx.ProductsByIDs(ctx, ids)
			if err != nil {
				return err
			}
			if len(products) != len(ids) {
				return ErrProductsNotFound
			}
			byID := make(map[uuid.UUID]*models.Product, len(products))
			for i := range products {
				byID[products[i].ID] = &products[i]
			}

			user, err := tx.GetUser(ctx, userID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			if err != nil {
				return err
			}

			tag := in.TgTag
			if blank(tag) && user.TgTag != nil {
				tag = *user.TgTag
			}
			if blank(tag) {
				return ErrContactHandleRequired
			}

			lines := make([]models.OrderProduct, len(in.Products))
			total := decimal.Zero
			for i, line := range in.Products {
				snapshot := byID[line.ProductID].Price
				lines[i] = models.OrderProduct{ProductID: line.ProductID, Quantity: line.Quantity, PriceAtTime: snapshot, Position: i}
				total = total.Add(snapshot.Mul(decimal.NewFromInt(int64(line.Quantity))))
			}

			o := &models.Order{TgTag: tag, Price: in.Price, UserID: userID}
			if s.RecomputeTotal {
				o.Price = total
			}
			if err := tx.CreateOrder(ctx, o); err != nil {
				return err
			}
			for i := range lines {
				lines[i].OrderID = o.ID
			}
			if err := tx.CreateOrderProducts(ctx, lines); err != nil {
				return err
			}

			for i := range lines {
				lines[i].Product = byID[lines[i].ProductID]
			}
			o.OrderProducts = lines
			order = o
			return nil
		}, s.txOptions()...)
	})
	if err != nil {
		return nil, err
	}
	metrics.OrdersCreated.Inc()

	if full, err := s.Repo.GetOrder(ctx, order.ID); err != nil {
		l.Warn("order_refetch_failed", "order_id", order.ID, "error", err)
	} else {
		order = full
	}

	l.Info("order_created", "order_id", order.ID, "lines", len(order.OrderProducts), "price", order.Price.String())
	s.afterCommit(ctx, order)
	return order, nil
}

// afterCommit runs the best-effort side effects on a context that outlives
// the request.
func (s *OrderService) afterCommit(ctx context.Context, order *models.Order) {
	bg := context.WithoutCancel(ctx)
	snapshot := *order

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(bg, notifyTimeout)
		defer cancel()
		l := logging.FromContext(ctx)

		if s.Notifier != nil {
			if err := s.Notifier.NotifyAdmins(ctx, &snapshot); err != nil {
				metrics.NotificationsFailed.Inc()
				l.Error("notify_admins_failed", "order_id", snapshot.ID, "error", err)
			}
		}
		publish(ctx, s.Events, mykafka.TopicOrders, snapshot.ID.String(), map[string]any{
			"type":    "order_created",
			"orderID": snapshot.ID,
			"userID":  snapshot.UserID,
			"price":   snapshot.Price,
			"lines":   len(snapshot.OrderProducts),
		})
	}()
}

// Wait blocks until background notifications have finished.
func (s *OrderService) Wait() {
	s.wg.Wait()
}

func (s *OrderService) retry() db.RetryConfig {
	if s.Retry.MaxAttempts == 0 {
		return db.DefaultRetryConfig()
	}
	return s.Retry
}

func (s *OrderService) txOptions() []*sql.TxOptions {
	if s.TxOptions == nil {
		return nil
	}
	return []*sql.TxOptions{s.TxOptions}
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID, caller Caller) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if !caller.IsAdmin && order.UserID != caller.ID {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, caller Caller) ([]models.Order, error) {
	if !caller.IsAdmin {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}
	return s.Repo.ListOrders(ctx)
}

func (s *OrderService) ListOrdersByUser(ctx context.Context, userID uuid.UUID, caller Caller) ([]models.Order, error) {
	if !caller.IsAdmin && userID != caller.ID {
		return nil, fmt.Errorf("%w: orders of another user", ErrForbidden)
	}
	return s.Repo.ListOrdersByUser(ctx, userID)
}
