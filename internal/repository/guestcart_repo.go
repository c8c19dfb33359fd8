package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/longnd/toystore-service/internal/models"
)

type GuestCartRepo struct {
	db *sql.DB
}

func NewGuestCartRepo(db *sql.DB) *GuestCartRepo {
	return &GuestCartRepo{db: db}
}

// UpsertLine adds quantity to an existing (session, product) line or inserts a
// new one. The single ON CONFLICT statement leans on the unique pair
// constraint, so concurrent adds for the same pair serialize in the database
// instead of racing a read-then-write.
func (r *GuestCartRepo) UpsertLine(ctx context.Context, sessionToken string, productID, quantity int, unitPrice decimal.Decimal, expiresAt *time.Time) (*models.GuestCartLine, error) {
	query := `
		INSERT INTO guest_cart_lines
		(session_token, product_id, quantity, unit_price, selected, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, NOW(), NOW())
		ON CONFLICT (session_token, product_id) DO UPDATE
		SET quantity   = guest_cart_lines.quantity + EXCLUDED.quantity,
		    selected   = TRUE,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = NOW()
		RETURNING id, session_token, product_id, quantity, unit_price, selected, expires_at, created_at, updated_at
	`

	var line models.GuestCartLine
	var expiry sql.NullTime
	err := r.db.QueryRowContext(ctx, query, sessionToken, productID, quantity, unitPrice, expiresAt).Scan(
		&line.ID,
		&line.SessionToken,
		&line.ProductID,
		&line.Quantity,
		&line.UnitPrice,
		&line.Selected,
		&expiry,
		&line.CreatedAt,
		&line.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		line.ExpiresAt = &expiry.Time
	}
	return &line, nil
}

// UpdateQuantity overwrites the quantity of an existing line. Returns false
// when no line matched.
func (r *GuestCartRepo) UpdateQuantity(ctx context.Context, sessionToken string, productID, quantity int) (bool, error) {
	query := `
		UPDATE guest_cart_lines
		SET quantity = $3, updated_at = NOW()
		WHERE session_token = $1 AND product_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, sessionToken, productID, quantity)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GuestCartRepo) SetSelected(ctx context.Context, sessionToken string, productID int, selected bool) (bool, error) {
	query := `
		UPDATE guest_cart_lines
		SET selected = $3, updated_at = NOW()
		WHERE session_token = $1 AND product_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, sessionToken, productID, selected)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GuestCartRepo) DeleteLine(ctx context.Context, sessionToken string, productID int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM guest_cart_lines WHERE session_token = $1 AND product_id = $2`,
		sessionToken, productID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *GuestCartRepo) ClearSession(ctx context.Context, sessionToken string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM guest_cart_lines WHERE session_token = $1`, sessionToken)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteSelected removes the lines that were just checked out.
func (r *GuestCartRepo) DeleteSelected(ctx context.Context, sessionToken string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM guest_cart_lines WHERE session_token = $1 AND selected = TRUE`,
		sessionToken)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *GuestCartRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM guest_cart_lines WHERE expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListSession returns the session's lines joined to their products. Lines
// whose product is no longer sellable are hidden, not deleted.
func (r *GuestCartRepo) ListSession(ctx context.Context, sessionToken string, selectedOnly bool) ([]models.CartLineView, error) {
	query := `
		SELECT l.id, l.session_token, l.product_id, l.quantity, l.unit_price,
		       l.selected, l.expires_at, l.created_at, l.updated_at,
		       p.name, p.image_url, p.price
		FROM guest_cart_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.session_token = $1 AND p.sellable = TRUE
	`
	if selectedOnly {
		query += ` AND l.selected = TRUE`
	}
	query += ` ORDER BY l.created_at ASC, l.id ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.CartLineView
	for rows.Next() {
		var v models.CartLineView
		var expiry sql.NullTime
		if err := rows.Scan(
			&v.ID,
			&v.SessionToken,
			&v.ProductID,
			&v.Quantity,
			&v.UnitPrice,
			&v.Selected,
			&expiry,
			&v.CreatedAt,
			&v.UpdatedAt,
			&v.ProductName,
			&v.ProductImage,
			&v.CurrentPrice,
		); err != nil {
			return nil, err
		}
		if expiry.Valid {
			v.ExpiresAt = &expiry.Time
		}
		lines = append(lines, v)
	}
	return lines, rows.Err()
}

// SessionTotal sums quantity * unit_price over every line of the session,
// selected or not.
func (r *GuestCartRepo) SessionTotal(ctx context.Context, sessionToken string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity * unit_price), 0) FROM guest_cart_lines WHERE session_token = $1`,
		sessionToken).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
