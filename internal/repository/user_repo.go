package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/longnd/toystore-service/internal/models"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) (int64, error) {
	query := `
		INSERT INTO users (email, password_hash, full_name, role, created_at)
		VALUES ($1,$2,$3,$4,NOW())
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.FullName, u.Role).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, password_hash, full_name, role, created_at FROM users WHERE email = $1`

	var u models.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
