package repository

import (
	"context"
	"database/sql"

	"github.com/longnd/toystore-service/internal/models"
)

type BannerRepo struct {
	db *sql.DB
}

func NewBannerRepo(db *sql.DB) *BannerRepo {
	return &BannerRepo{db: db}
}

func (r *BannerRepo) ListActive(ctx context.Context) ([]models.Banner, error) {
	query := `
		SELECT id, title, image_url, link_url, position, active, created_at
		FROM banners
		WHERE active = TRUE
		ORDER BY position ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banners []models.Banner
	for rows.Next() {
		var b models.Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position, &b.Active, &b.CreatedAt); err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	return banners, rows.Err()
}

func (r *BannerRepo) Create(ctx context.Context, b *models.Banner) (int, error) {
	query := `
		INSERT INTO banners (title, image_url, link_url, position, active, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
		RETURNING id
	`
	var id int
	err := r.db.QueryRowContext(ctx, query, b.Title, b.ImageURL, b.LinkURL, b.Position, b.Active).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *BannerRepo) SetActive(ctx context.Context, id int, active bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE banners SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
