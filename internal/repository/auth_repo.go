package repository

import (
	"context"
	"errors"
	"time"

	"ExamPrepAPI/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthRepository struct {
	DB *pgxpool.Pool
}

func NewAuthRepository(db *pgxpool.Pool) *AuthRepository {
	return &AuthRepository{DB: db}
}

// CreateTx inserts a new auth identity inside the caller's transaction.
func (r *AuthRepository) CreateTx(ctx context.Context, tx pgx.Tx, email, passwordHash string) (uuid.UUID, error) {
	id := uuid.New()
	q := `INSERT INTO auths (auth_id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, q, id, email, passwordHash, time.Now()); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *AuthRepository) GetByEmail(ctx context.Context, email string) (*model.Auth, error) {
	var a model.Auth
	q := `SELECT auth_id, email, password_hash, created_at FROM auths WHERE email=$1`
	if err := r.DB.QueryRow(ctx, q, email).Scan(&a.AuthID, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AuthRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM auths WHERE email=$1)`
	if err := r.DB.QueryRow(ctx, q, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
