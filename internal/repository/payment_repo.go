package repository

import (
	"context"
	"errors"

	"ExamPrepAPI/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicatePayment signals that a payment with the same
// (payment_method, gateway_payment_id) already exists. The unique constraint
// makes check-and-create a single atomic insert.
var ErrDuplicatePayment = errors.New("payment already recorded")

type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

// Create inserts the payment record, assigning PaymentID. A unique violation
// on the gateway payment id surfaces as ErrDuplicatePayment.
func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	p.PaymentID = uuid.New()
	q := `
		INSERT INTO payments
			(payment_id, user_id, amount, currency, payment_method,
			 gateway_payment_id, gateway_order_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.DB.Exec(ctx, q,
		p.PaymentID, p.UserID, p.Amount, p.Currency, p.PaymentMethod,
		p.GatewayPaymentID, p.GatewayOrderID, p.Status,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePayment
		}
		return err
	}
	return nil
}

// GetByGatewayID fetches an existing payment record, nil if absent.
func (r *PaymentRepository) GetByGatewayID(ctx context.Context, method, gatewayPaymentID string) (*model.Payment, error) {
	var p model.Payment
	q := `
		SELECT payment_id, user_id, amount, currency, payment_method,
		       gateway_payment_id, gateway_order_id, status, created_at
		FROM payments
		WHERE payment_method=$1 AND gateway_payment_id=$2
	`
	err := r.DB.QueryRow(ctx, q, method, gatewayPaymentID).Scan(
		&p.PaymentID, &p.UserID, &p.Amount, &p.Currency, &p.PaymentMethod,
		&p.GatewayPaymentID, &p.GatewayOrderID, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
