package repository

import (
	"context"
	"database/sql"

	"github.com/longnd/toystore-service/internal/models"
)

type ShippingRepo struct {
	db *sql.DB
}

func NewShippingRepo(db *sql.DB) *ShippingRepo {
	return &ShippingRepo{db: db}
}

// ListActive returns every active rule ordered by priority then id, so the
// resolver's scan order never depends on insertion order.
func (r *ShippingRepo) ListActive(ctx context.Context) ([]models.ShippingRule, error) {
	query := `
		SELECT id, region, min_order, max_order, min_distance, max_distance,
		       flat_fee, free_from, priority, active
		FROM shipping_rules
		WHERE active = TRUE
		ORDER BY priority ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.ShippingRule
	for rows.Next() {
		var rule models.ShippingRule
		var region sql.NullString
		if err := rows.Scan(
			&rule.ID,
			&region,
			&rule.MinOrder,
			&rule.MaxOrder,
			&rule.MinDistance,
			&rule.MaxDistance,
			&rule.FlatFee,
			&rule.FreeFrom,
			&rule.Priority,
			&rule.Active,
		); err != nil {
			return nil, err
		}
		if region.Valid {
			rule.Region = &region.String
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *ShippingRepo) Create(ctx context.Context, rule *models.ShippingRule) (int, error) {
	query := `
		INSERT INTO shipping_rules
		(region, min_order, max_order, min_distance, max_distance, flat_fee, free_from, priority, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`
	var region sql.NullString
	if rule.Region != nil {
		region = sql.NullString{String: *rule.Region, Valid: true}
	}

	var id int
	err := r.db.QueryRowContext(ctx, query,
		region,
		rule.MinOrder,
		rule.MaxOrder,
		rule.MinDistance,
		rule.MaxDistance,
		rule.FlatFee,
		rule.FreeFrom,
		rule.Priority,
		rule.Active,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
