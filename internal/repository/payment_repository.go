package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/pkg/database"
)

const paymentColumns = `id::text, token_id, buyer, currency, amount, amount_usd, payment_method,
	status, transaction_hash, created_at, expires_at, confirmed_at`

// PaymentRepository stores payment intents.
type PaymentRepository struct {
	pool database.TxQuerier
}

// NewPaymentRepository creates a new PaymentRepository with the given pool.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// NewPaymentRepositoryWithPool creates a new PaymentRepository with a custom pool interface.
// This is primarily used for testing.
func NewPaymentRepositoryWithPool(pool database.TxQuerier) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts a new intent. Buyer is stored lowercased.
func (r *PaymentRepository) Create(ctx context.Context, p *model.PaymentIntent) error {
	query := `INSERT INTO payment_intents
		(id, token_id, buyer, currency, amount, amount_usd, payment_method, status, created_at, expires_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.TokenID,
		strings.ToLower(p.Buyer),
		p.Currency,
		p.Amount,
		p.AmountUSD,
		p.PaymentMethod,
		string(p.Status),
		p.CreatedAt,
		p.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment intent: %w", err)
	}
	return nil
}

// Get retrieves an intent by id.
// Returns nil, nil if no intent has that id.
func (r *PaymentRepository) Get(ctx context.Context, id string) (*model.PaymentIntent, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_intents WHERE id = $1::uuid`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment intent %s: %w", id, err)
	}
	return p, nil
}

// Transition moves a pending intent to status and returns the updated row.
// Returns nil, nil if the intent does not exist or is no longer pending,
// so concurrent webhooks cannot both win.
func (r *PaymentRepository) Transition(ctx context.Context, id string, status model.PaymentStatus, txHash string, confirmedAt *time.Time) (*model.PaymentIntent, error) {
	query := `UPDATE payment_intents
		SET status = $2, transaction_hash = $3, confirmed_at = $4
		WHERE id = $1::uuid AND status = 'pending'
		RETURNING ` + paymentColumns

	p, err := scanPayment(r.pool.QueryRow(ctx, query, id, string(status), strings.ToLower(txHash), confirmedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update payment intent %s: %w", id, err)
	}
	return p, nil
}

func scanPayment(row pgx.Row) (*model.PaymentIntent, error) {
	var (
		p      model.PaymentIntent
		status string
	)
	err := row.Scan(
		&p.ID,
		&p.TokenID,
		&p.Buyer,
		&p.Currency,
		&p.Amount,
		&p.AmountUSD,
		&p.PaymentMethod,
		&status,
		&p.TransactionHash,
		&p.CreatedAt,
		&p.ExpiresAt,
		&p.ConfirmedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = model.PaymentStatus(status)
	return &p, nil
}
