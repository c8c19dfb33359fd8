package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/longnd/toystore-service/internal/models"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = `
	id, code, customer_id, session_token, region, subtotal, shipping_fee,
	discount, voucher_code, total, status, created_at, updated_at
`

// Create inserts the order header, its lines and the initial history entry in
// one transaction.
func (r *OrderRepo) Create(ctx context.Context, order *models.Order, lines []models.OrderLine) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertOrder := `
		INSERT INTO orders
		(code, customer_id, session_token, region, subtotal, shipping_fee,
		 discount, voucher_code, total, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
		RETURNING id
	`
	var customerID sql.NullInt64
	if order.CustomerID != nil {
		customerID = sql.NullInt64{Int64: *order.CustomerID, Valid: true}
	}
	var voucherCode sql.NullString
	if order.VoucherCode != nil {
		voucherCode = sql.NullString{String: *order.VoucherCode, Valid: true}
	}

	var orderID int
	err = tx.QueryRowContext(ctx, insertOrder,
		order.Code,
		customerID,
		order.SessionToken,
		order.Region,
		order.Subtotal,
		order.ShippingFee,
		order.Discount,
		voucherCode,
		order.Total,
		order.Status,
	).Scan(&orderID)
	if err != nil {
		return 0, err
	}

	insertLine := `INSERT INTO order_lines (order_id, product_id, quantity, unit_price) VALUES ($1,$2,$3,$4)`
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, insertLine, orderID, line.ProductID, line.Quantity, line.UnitPrice); err != nil {
			return 0, err
		}
	}

	insertHistory := `
		INSERT INTO order_status_history (order_id, old_status, new_status, actor, reason, created_at)
		VALUES ($1, '', $2, $3, 'order created', NOW())
	`
	actor := "guest"
	if order.CustomerID != nil {
		actor = "customer"
	}
	if _, err := tx.ExecContext(ctx, insertHistory, orderID, order.Status, actor); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return orderID, nil
}

func (r *OrderRepo) scanOrder(row *sql.Row) (*models.Order, error) {
	var o models.Order
	var customerID sql.NullInt64
	var voucherCode sql.NullString

	err := row.Scan(
		&o.ID,
		&o.Code,
		&customerID,
		&o.SessionToken,
		&o.Region,
		&o.Subtotal,
		&o.ShippingFee,
		&o.Discount,
		&voucherCode,
		&o.Total,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if customerID.Valid {
		o.CustomerID = &customerID.Int64
	}
	if voucherCode.Valid {
		o.VoucherCode = &voucherCode.String
	}
	return &o, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id int) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, id))
}

// GetAndLockStatus reads the current status FOR UPDATE inside the caller's
// transaction, so a transition check cannot race a concurrent update.
func (r *OrderRepo) GetAndLockStatus(ctx context.Context, tx *sql.Tx, orderID int) (models.OrderStatus, error) {
	var status models.OrderStatus
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sql.ErrNoRows
		}
		return "", err
	}
	return status, nil
}

func (r *OrderRepo) SetStatus(ctx context.Context, tx *sql.Tx, orderID int, status models.OrderStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, orderID, status)
	return err
}

func (r *OrderRepo) AppendHistory(ctx context.Context, tx *sql.Tx, entry models.OrderStatusEntry) error {
	query := `
		INSERT INTO order_status_history (order_id, old_status, new_status, actor, reason, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
	`
	_, err := tx.ExecContext(ctx, query, entry.OrderID, entry.OldStatus, entry.NewStatus, entry.Actor, entry.Reason)
	return err
}

func (r *OrderRepo) History(ctx context.Context, orderID int) ([]models.OrderStatusEntry, error) {
	query := `
		SELECT id, order_id, old_status, new_status, actor, reason, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.OrderStatusEntry
	for rows.Next() {
		var e models.OrderStatusEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.OldStatus, &e.NewStatus, &e.Actor, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID int64) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		var cid sql.NullInt64
		var voucherCode sql.NullString
		if err := rows.Scan(
			&o.ID, &o.Code, &cid, &o.SessionToken, &o.Region, &o.Subtotal,
			&o.ShippingFee, &o.Discount, &voucherCode, &o.Total, &o.Status,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if cid.Valid {
			o.CustomerID = &cid.Int64
		}
		if voucherCode.Valid {
			o.VoucherCode = &voucherCode.String
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepo) Lines(ctx context.Context, orderID int) ([]models.OrderLine, error) {
	query := `SELECT id, order_id, product_id, quantity, unit_price FROM order_lines WHERE order_id = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.OrderLine
	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
