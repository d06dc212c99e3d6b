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

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateTx inserts the internal profile row for a freshly registered auth
// identity (role guest, no subscription) inside the caller's transaction.
func (r *UserRepository) CreateTx(ctx context.Context, tx pgx.Tx, authID uuid.UUID, email, name string) (uuid.UUID, error) {
	id := uuid.New()
	q := `
		INSERT INTO users (user_id, auth_id, email, name, role, subscription, created_at)
		VALUES ($1, $2, $3, $4, 'guest', 'no', $5)
	`
	if _, err := tx.Exec(ctx, q, id, authID, email, name, time.Now()); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// GetByAuthID resolves the internal profile for an external identity.
// Returns (nil, nil) when no profile exists.
func (r *UserRepository) GetByAuthID(ctx context.Context, authID uuid.UUID) (*model.User, error) {
	var u model.User
	q := `
		SELECT user_id, auth_id, email, name, role, subscription, created_at
		FROM users
		WHERE auth_id=$1
	`
	err := r.DB.QueryRow(ctx, q, authID).Scan(
		&u.UserID, &u.AuthID, &u.Email, &u.Name, &u.Role, &u.Subscription, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// UpgradeEntitlement grants the paid entitlement: subscription yes, role
// student. Idempotent, and an admin role is never downgraded.
func (r *UserRepository) UpgradeEntitlement(ctx context.Context, authID uuid.UUID) error {
	q := `
		UPDATE users
		SET subscription='yes',
		    role = CASE WHEN role='admin' THEN role ELSE 'student' END
		WHERE auth_id=$1
	`
	tag, err := r.DB.Exec(ctx, q, authID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("profile not found")
	}
	return nil
}
