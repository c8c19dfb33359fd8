package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// CountUsage is the non-locking read used by validation previews.
func (r *UsageRepo) CountUsage(ctx context.Context, voucherID int, customerID int64) (int, error) {
	var usageCount int
	query := `SELECT usage_count FROM voucher_usage WHERE voucher_id = $1 AND customer_id = $2`
	err := r.db.QueryRowContext(ctx, query, voucherID, customerID).Scan(&usageCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return usageCount, nil
}

// Get or create the per-customer usage row AND lock it for update.
func (r *UsageRepo) GetAndLockUsage(ctx context.Context, tx *sql.Tx, voucherID int, customerID int64) (int, error) {
	var usageCount int

	query := `
		SELECT usage_count
		FROM voucher_usage
		WHERE voucher_id = $1 AND customer_id = $2
		FOR UPDATE
	`

	err := tx.QueryRowContext(ctx, query, voucherID, customerID).Scan(&usageCount)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			insert := `
				INSERT INTO voucher_usage (voucher_id, customer_id, usage_count, last_used)
				VALUES ($1, $2, 0, NOW())
				RETURNING usage_count
			`

			err := tx.QueryRowContext(ctx, insert, voucherID, customerID).Scan(&usageCount)
			if err != nil {
				return 0, err
			}

			return usageCount, nil
		}
		return 0, err
	}

	return usageCount, nil
}

// Increment usage safely inside the transaction.
func (r *UsageRepo) IncrementUsage(ctx context.Context, tx *sql.Tx, voucherID int, customerID int64) error {
	query := `
		UPDATE voucher_usage
		SET usage_count = usage_count + 1,
		    last_used = $3
		WHERE voucher_id = $1 AND customer_id = $2
	`

	_, err := tx.ExecContext(ctx, query, voucherID, customerID, time.Now())
	return err
}
