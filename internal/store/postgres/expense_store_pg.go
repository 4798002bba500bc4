package postgres

import (
	"context"
	"errors"
	"fmt"

	istore "github.com/CuentaClara/cuenta-clara-backend/internal/store"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/jackc/pgx/v5"
)

var _ istore.ExpenseStore = (*pgExpenseStore)(nil)

type pgExpenseStore struct {
	db DB
}

// NewExpenseStore creates a new PostgreSQL expense store.
func NewExpenseStore(db DB) istore.ExpenseStore {
	return &pgExpenseStore{db: db}
}

// CreateExpense inserts the expense and its participant shares in one
// transaction so a partially written split can never be observed.
func (s *pgExpenseStore) CreateExpense(ctx context.Context, expense *types.SplitExpense) (string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackTx(ctx, tx)

	var expenseID string
	err = tx.QueryRow(ctx, `
        INSERT INTO split_expenses (group_id, description, amount, paid_by_member_id, expense_date)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`,
		expense.GroupID,
		expense.Description,
		expense.Amount.StringFixed(2),
		expense.PaidByID,
		expense.Date,
	).Scan(&expenseID)
	if err != nil {
		return "", fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, expenseID, expense.Participants); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit expense creation: %w", err)
	}
	return expenseID, nil
}

// UpdateExpense rewrites the expense row and replaces the whole participant
// set. Shares are never patched individually.
func (s *pgExpenseStore) UpdateExpense(ctx context.Context, expense *types.SplitExpense) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackTx(ctx, tx)

	tag, err := tx.Exec(ctx, `
        UPDATE split_expenses
        SET description = $1, amount = $2, paid_by_member_id = $3, expense_date = $4
        WHERE id = $5 AND group_id = $6`,
		expense.Description,
		expense.Amount.StringFixed(2),
		expense.PaidByID,
		expense.Date,
		expense.ID,
		expense.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense %s: %w", expense.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return istore.ErrNotFound
	}

	_, err = tx.Exec(ctx, `DELETE FROM split_expense_participants WHERE expense_id = $1`, expense.ID)
	if err != nil {
		return fmt.Errorf("failed to clear participants for expense %s: %w", expense.ID, err)
	}

	if err := insertParticipants(ctx, tx, expense.ID, expense.Participants); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit expense update: %w", err)
	}
	return nil
}

func (s *pgExpenseStore) GetExpense(ctx context.Context, groupID string, expenseID string) (*types.SplitExpense, error) {
	var (
		expense   types.SplitExpense
		amountStr string
	)
	err := s.db.QueryRow(ctx, `
        SELECT id, group_id, description, amount::text, paid_by_member_id, expense_date, created_at
        FROM split_expenses
        WHERE id = $1 AND group_id = $2`,
		expenseID, groupID,
	).Scan(&expense.ID, &expense.GroupID, &expense.Description, &amountStr,
		&expense.PaidByID, &expense.Date, &expense.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, istore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get expense %s: %w", expenseID, err)
	}

	expense.Amount, err = scanDecimal(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount for expense %s: %w", expenseID, err)
	}

	participants, err := s.listParticipants(ctx, []string{expense.ID})
	if err != nil {
		return nil, err
	}
	expense.Participants = participants[expense.ID]

	return &expense, nil
}

func (s *pgExpenseStore) ListExpenses(ctx context.Context, groupID string) ([]types.SplitExpense, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, group_id, description, amount::text, paid_by_member_id, expense_date, created_at
        FROM split_expenses
        WHERE group_id = $1
        ORDER BY expense_date DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var (
		expenses []types.SplitExpense
		ids      []string
	)
	for rows.Next() {
		var (
			e         types.SplitExpense
			amountStr string
		)
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &amountStr,
			&e.PaidByID, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount, err = scanDecimal(amountStr)
		if err != nil {
			return nil, fmt.Errorf("invalid amount for expense %s: %w", e.ID, err)
		}
		expenses = append(expenses, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading expense rows: %w", err)
	}

	participants, err := s.listParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		expenses[i].Participants = participants[expenses[i].ID]
	}

	return expenses, nil
}

func (s *pgExpenseStore) DeleteExpense(ctx context.Context, groupID string, expenseID string) error {
	// Participants go with the expense via ON DELETE CASCADE.
	tag, err := s.db.Exec(ctx, `
        DELETE FROM split_expenses WHERE id = $1 AND group_id = $2`,
		expenseID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return istore.ErrNotFound
	}
	return nil
}

func (s *pgExpenseStore) listParticipants(ctx context.Context, expenseIDs []string) (map[string][]types.ExpenseParticipant, error) {
	result := make(map[string][]types.ExpenseParticipant, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.Query(ctx, `
        SELECT id, expense_id, member_id, share_amount::text
        FROM split_expense_participants
        WHERE expense_id = ANY($1)
        ORDER BY member_id`,
		expenseIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p        types.ExpenseParticipant
			shareStr string
		)
		if err := rows.Scan(&p.ID, &p.ExpenseID, &p.MemberID, &shareStr); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.Share, err = scanDecimal(shareStr)
		if err != nil {
			return nil, fmt.Errorf("invalid share for participant %s: %w", p.ID, err)
		}
		result[p.ExpenseID] = append(result[p.ExpenseID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading participant rows: %w", err)
	}
	return result, nil
}

func insertParticipants(ctx context.Context, tx pgx.Tx, expenseID string, participants []types.ExpenseParticipant) error {
	for _, p := range participants {
		_, err := tx.Exec(ctx, `
            INSERT INTO split_expense_participants (expense_id, member_id, share_amount)
            VALUES ($1, $2, $3)`,
			expenseID,
			p.MemberID,
			p.Share.StringFixed(2),
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant %s: %w", p.MemberID, err)
		}
	}
	return nil
}
