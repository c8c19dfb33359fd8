package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/longnd/toystore-service/internal/models"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// allowedTransitions is the explicit edge table for the order lifecycle. The
// history log is written only as a side effect of a legal transition.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusShipping, models.OrderStatusCancelled},
	models.OrderStatusShipping:  {models.OrderStatusDelivered},
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func knownStatus(s models.OrderStatus) bool {
	switch s {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusShipping,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
		return true
	}
	return false
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order, lines []models.OrderLine) (int, error)
	GetByID(ctx context.Context, id int) (*models.Order, error)
	GetAndLockStatus(ctx context.Context, tx *sql.Tx, orderID int) (models.OrderStatus, error)
	SetStatus(ctx context.Context, tx *sql.Tx, orderID int, status models.OrderStatus) error
	AppendHistory(ctx context.Context, tx *sql.Tx, entry models.OrderStatusEntry) error
	History(ctx context.Context, orderID int) ([]models.OrderStatusEntry, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error)
	Lines(ctx context.Context, orderID int) ([]models.OrderLine, error)
}

type OrderService struct {
	db     *sql.DB
	orders OrderStore
	logger *zap.Logger
}

func NewOrderService(db *sql.DB, orders OrderStore, logger *zap.Logger) *OrderService {
	return &OrderService{db: db, orders: orders, logger: logger}
}

// Transition moves an order to a new status, appending the audit entry in the
// same transaction. The current status is read under a row lock so two
// concurrent transitions cannot both pass the edge check.
func (s *OrderService) Transition(ctx context.Context, orderID int, to models.OrderStatus, actor, reason string) error {
	if !knownStatus(to) {
		return ErrInvalidTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	from, err := s.orders.GetAndLockStatus(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("lock status: %w", err)
	}

	if !transitionAllowed(from, to) {
		return ErrInvalidTransition
	}

	if err := s.orders.SetStatus(ctx, tx, orderID, to); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if err := s.orders.AppendHistory(ctx, tx, models.OrderStatusEntry{
		OrderID:   orderID,
		OldStatus: from,
		NewStatus: to,
		Actor:     actor,
		Reason:    reason,
	}); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx commit: %w", err)
	}
	committed = true

	s.logger.Info("order status changed",
		zap.Int("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor", actor))
	return nil
}

func (s *OrderService) Get(ctx context.Context, orderID int) (*models.Order, []models.OrderLine, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, ErrOrderNotFound
	}
	lines, err := s.orders.Lines(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, lines, nil
}

func (s *OrderService) History(ctx context.Context, orderID int) ([]models.OrderStatusEntry, error) {
	return s.orders.History(ctx, orderID)
}

func (s *OrderService) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}
