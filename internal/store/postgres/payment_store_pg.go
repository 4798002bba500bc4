package postgres

import (
	"context"
	"errors"
	"fmt"

	istore "github.com/CuentaClara/cuenta-clara-backend/internal/store"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ istore.PaymentStore = (*pgPaymentStore)(nil)

type pgPaymentStore struct {
	db DB
}

// NewPaymentStore creates a new PostgreSQL payment store.
func NewPaymentStore(db DB) istore.PaymentStore {
	return &pgPaymentStore{db: db}
}

const paymentSelect = `
        SELECT id, group_id, from_member_id, to_member_id, amount::text,
               gateway_preference_id, gateway_payment_id, status, created_at, updated_at
        FROM payments`

// CreatePayment inserts a payment row. The partial unique index on
// non-terminal payments makes this the authoritative guard against double
// checkout creation: the loser of a race gets ErrDuplicateEdge.
func (s *pgPaymentStore) CreatePayment(ctx context.Context, payment *types.Payment) (string, error) {
	var paymentID string
	err := s.db.QueryRow(ctx, `
        INSERT INTO payments (id, group_id, from_member_id, to_member_id, amount, gateway_preference_id, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`,
		payment.ID,
		payment.GroupID,
		payment.FromMemberID,
		payment.ToMemberID,
		payment.Amount.StringFixed(2),
		payment.GatewayPreferenceID,
		string(payment.Status),
	).Scan(&paymentID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", istore.ErrDuplicateEdge
		}
		return "", fmt.Errorf("failed to insert payment: %w", err)
	}
	return paymentID, nil
}

func (s *pgPaymentStore) GetPayment(ctx context.Context, id string) (*types.Payment, error) {
	row := s.db.QueryRow(ctx, paymentSelect+` WHERE id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, istore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment %s: %w", id, err)
	}
	return payment, nil
}

func (s *pgPaymentStore) GetActivePaymentForEdge(ctx context.Context, groupID, fromMemberID, toMemberID string) (*types.Payment, error) {
	row := s.db.QueryRow(ctx, paymentSelect+`
        WHERE group_id = $1 AND from_member_id = $2 AND to_member_id = $3
          AND status IN ('created', 'pending')
        ORDER BY created_at DESC
        LIMIT 1`,
		groupID, fromMemberID, toMemberID,
	)
	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, istore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active payment for edge: %w", err)
	}
	return payment, nil
}

func (s *pgPaymentStore) ListGroupPayments(ctx context.Context, groupID string) ([]types.Payment, error) {
	rows, err := s.db.Query(ctx, paymentSelect+`
        WHERE group_id = $1
        ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []types.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading payment rows: %w", err)
	}
	return payments, nil
}

func (s *pgPaymentStore) UpdatePaymentStatus(ctx context.Context, id string, status types.PaymentStatus, gatewayPaymentID *string) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE payments
        SET status = $1,
            gateway_payment_id = COALESCE($2, gateway_payment_id),
            updated_at = now()
        WHERE id = $3`,
		string(status), gatewayPaymentID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return istore.ErrNotFound
	}
	return nil
}

func scanPayment(row pgx.Row) (*types.Payment, error) {
	var (
		p         types.Payment
		amountStr string
		status    string
	)
	err := row.Scan(
		&p.ID, &p.GroupID, &p.FromMemberID, &p.ToMemberID, &amountStr,
		&p.GatewayPreferenceID, &p.GatewayPaymentID, &status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Amount, err = scanDecimal(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount for payment %s: %w", p.ID, err)
	}
	p.Status = types.PaymentStatus(status)
	return &p, nil
}
