package repository

import (
	"context"
	"database/sql"

	"github.com/longnd/toystore-service/internal/models"
)

type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

func (r *ReviewRepo) Create(ctx context.Context, review *models.Review) (int, error) {
	query := `
		INSERT INTO reviews (product_id, customer_id, rating, comment, created_at)
		VALUES ($1,$2,$3,$4,NOW())
		RETURNING id
	`
	var id int
	err := r.db.QueryRowContext(ctx, query, review.ProductID, review.CustomerID, review.Rating, review.Comment).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ReviewRepo) ListByProduct(ctx context.Context, productID int) ([]models.Review, error) {
	query := `
		SELECT id, product_id, customer_id, rating, comment, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var rev models.Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.CustomerID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}
