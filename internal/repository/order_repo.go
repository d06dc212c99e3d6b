package repository

import (
	"context"
	"fmt"
	"time"

	"ExamPrepAPI/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	DB *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

// FormatOrderNumber renders a day-scoped sequence as the human-readable order
// number: YYYYMMDD followed by a 4-digit zero-padded sequence.
func FormatOrderNumber(t time.Time, seq int) string {
	return fmt.Sprintf("%s%04d", t.Format("20060102"), seq)
}

// nextOrderNumberTx bumps today's counter and returns the formatted number.
// The upsert is a single atomic statement, so two concurrent checkouts on the
// same day can never observe the same sequence.
func (r *OrderRepository) nextOrderNumberTx(ctx context.Context, tx pgx.Tx, now time.Time) (string, error) {
	var seq int
	q := `
		INSERT INTO order_counters (day, seq)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET seq = order_counters.seq + 1
		RETURNING seq
	`
	if err := tx.QueryRow(ctx, q, now.Format("2006-01-02")).Scan(&seq); err != nil {
		return "", err
	}
	return FormatOrderNumber(now, seq), nil
}

// Create persists the order and its line-item snapshots in one transaction,
// assigning OrderID and OrderNumber on the way.
func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	number, err := r.nextOrderNumberTx(ctx, tx, order.PurchaseDate)
	if err != nil {
		return err
	}
	order.OrderID = uuid.New()
	order.OrderNumber = number

	_, err = tx.Exec(ctx, `
		INSERT INTO orders
			(order_id, order_number, user_id, total_amount, currency,
			 payment_method, gateway_payment_id, status, purchase_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		order.OrderID, order.OrderNumber, order.UserID, order.TotalAmount,
		order.Currency, order.PaymentMethod, order.GatewayPaymentID,
		order.Status, order.PurchaseDate,
	)
	if err != nil {
		return err
	}

	for i := range order.Items {
		it := &order.Items[i]
		it.OrderID = order.OrderID
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items
				(order_id, product_id, title, price, quantity, category,
				 exam_code, sku, sample_pdf_url, main_pdf_url, slug)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			it.OrderID, it.ProductID, it.Title, it.Price, it.Quantity,
			it.Category, it.ExamCode, it.SKU, it.SamplePdfURL, it.MainPdfURL, it.Slug,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// List returns orders, optionally filtered to one owner, newest first.
func (r *OrderRepository) List(ctx context.Context, userID *uuid.UUID) ([]model.Order, error) {
	q := `
		SELECT order_id, order_number, user_id, total_amount, currency,
		       payment_method, gateway_payment_id, status, purchase_date
		FROM orders
	`
	args := []any{}
	if userID != nil {
		q += ` WHERE user_id=$1`
		args = append(args, *userID)
	}
	q += ` ORDER BY order_number DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.OrderID, &o.OrderNumber, &o.UserID, &o.TotalAmount, &o.Currency,
			&o.PaymentMethod, &o.GatewayPaymentID, &o.Status, &o.PurchaseDate,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range out {
		items, err := r.itemsByOrder(ctx, out[i].OrderID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *OrderRepository) itemsByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT order_item_id, order_id, product_id, title, price, quantity,
		       category, exam_code, sku, sample_pdf_url, main_pdf_url, slug
		FROM order_items
		WHERE order_id=$1
		ORDER BY order_item_id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(
			&it.OrderItemID, &it.OrderID, &it.ProductID, &it.Title, &it.Price,
			&it.Quantity, &it.Category, &it.ExamCode, &it.SKU,
			&it.SamplePdfURL, &it.MainPdfURL, &it.Slug,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DeleteBatch removes the given orders and returns how many rows went away.
// Item rows cascade.
func (r *OrderRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
