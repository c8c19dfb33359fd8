package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/longnd/toystore-service/internal/models"
)

type VoucherRepo struct {
	db *sql.DB
}

func NewVoucherRepo(db *sql.DB) *VoucherRepo {
	return &VoucherRepo{db: db}
}

const voucherColumns = `
	id, code, kind, value, max_discount, min_order_value,
	starts_at, ends_at, use_limit, used_count, per_user_limit,
	status, created_at, updated_at
`

func scanVoucher(row *sql.Row) (*models.Voucher, error) {
	var v models.Voucher
	var useLimit sql.NullInt64

	err := row.Scan(
		&v.ID,
		&v.Code,
		&v.Kind,
		&v.Value,
		&v.MaxDiscount,
		&v.MinOrderValue,
		&v.StartsAt,
		&v.EndsAt,
		&useLimit,
		&v.UsedCount,
		&v.PerUserLimit,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if useLimit.Valid {
		limit := int(useLimit.Int64)
		v.UseLimit = &limit
	}
	return &v, nil
}

func (r *VoucherRepo) GetByCode(ctx context.Context, code string) (*models.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE code = $1`
	return scanVoucher(r.db.QueryRowContext(ctx, query, code))
}

// GetAndLock loads the voucher row FOR UPDATE so the used_count check and
// increment happen under one lock. Must run inside the caller's transaction.
func (r *VoucherRepo) GetAndLock(ctx context.Context, tx *sql.Tx, code string) (*models.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE code = $1 FOR UPDATE`
	return scanVoucher(tx.QueryRowContext(ctx, query, code))
}

func (r *VoucherRepo) IncrementUse(ctx context.Context, tx *sql.Tx, voucherID int) error {
	query := `
		UPDATE vouchers
		SET used_count = used_count + 1,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query, voucherID)
	return err
}

func (r *VoucherRepo) Create(ctx context.Context, v *models.Voucher) (int, error) {
	query := `
		INSERT INTO vouchers
		(code, kind, value, max_discount, min_order_value, starts_at, ends_at,
		 use_limit, per_user_limit, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
		RETURNING id
	`
	var useLimit sql.NullInt64
	if v.UseLimit != nil {
		useLimit = sql.NullInt64{Int64: int64(*v.UseLimit), Valid: true}
	}

	var id int
	err := r.db.QueryRowContext(ctx, query,
		v.Code,
		v.Kind,
		v.Value,
		v.MaxDiscount,
		v.MinOrderValue,
		v.StartsAt,
		v.EndsAt,
		useLimit,
		v.PerUserLimit,
		v.Status,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
