package models

import (
	"context"
	"errors"
	"sort"
	"time"

	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	istore "github.com/CuentaClara/cuenta-clara-backend/internal/store"
	"github.com/CuentaClara/cuenta-clara-backend/logger"
	"github.com/CuentaClara/cuenta-clara-backend/pkg/valueobjects"
	"github.com/CuentaClara/cuenta-clara-backend/types"
)

// ExpenseModel owns shared-expense writes: validation against current group
// membership and the equal-split share computation.
type ExpenseModel struct {
	expenseStore istore.ExpenseStore
	groupModel   *GroupModel
}

// NewExpenseModel creates a new ExpenseModel.
func NewExpenseModel(expenseStore istore.ExpenseStore, groupModel *GroupModel) *ExpenseModel {
	return &ExpenseModel{
		expenseStore: expenseStore,
		groupModel:   groupModel,
	}
}

// CreateExpense validates the payer and participants against the group's
// current members, splits the amount and persists the expense atomically.
func (em *ExpenseModel) CreateExpense(ctx context.Context, ownerID string, groupID string, req *types.CreateExpenseRequest) (*types.SplitExpense, error) {
	log := logger.GetLogger()

	group, err := em.groupModel.requireActiveGroup(ctx, ownerID, groupID)
	if err != nil {
		return nil, err
	}

	expense, err := buildExpense(group, req)
	if err != nil {
		return nil, err
	}

	expenseID, err := em.expenseStore.CreateExpense(ctx, expense)
	if err != nil {
		log.Errorw("Failed to create expense", "groupId", groupID, "error", err)
		return nil, apperrors.NewDatabaseError(err)
	}

	return em.GetExpense(ctx, ownerID, groupID, expenseID)
}

// UpdateExpense rewrites the expense and replaces its whole participant set;
// shares are recomputed from the new amount and participant list.
func (em *ExpenseModel) UpdateExpense(ctx context.Context, ownerID string, groupID string, expenseID string, req *types.CreateExpenseRequest) (*types.SplitExpense, error) {
	group, err := em.groupModel.requireActiveGroup(ctx, ownerID, groupID)
	if err != nil {
		return nil, err
	}

	expense, err := buildExpense(group, req)
	if err != nil {
		return nil, err
	}
	expense.ID = expenseID

	if err := em.expenseStore.UpdateExpense(ctx, expense); err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Expense", expenseID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	return em.GetExpense(ctx, ownerID, groupID, expenseID)
}

func (em *ExpenseModel) GetExpense(ctx context.Context, ownerID string, groupID string, expenseID string) (*types.SplitExpense, error) {
	if _, err := em.groupModel.GetGroup(ctx, ownerID, groupID); err != nil {
		return nil, err
	}

	expense, err := em.expenseStore.GetExpense(ctx, groupID, expenseID)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Expense", expenseID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return expense, nil
}

// ListExpenses works on closed groups too; history stays readable.
func (em *ExpenseModel) ListExpenses(ctx context.Context, ownerID string, groupID string) ([]types.SplitExpense, error) {
	if _, err := em.groupModel.GetGroup(ctx, ownerID, groupID); err != nil {
		return nil, err
	}

	expenses, err := em.expenseStore.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return expenses, nil
}

func (em *ExpenseModel) DeleteExpense(ctx context.Context, ownerID string, groupID string, expenseID string) error {
	if _, err := em.groupModel.requireActiveGroup(ctx, ownerID, groupID); err != nil {
		return err
	}

	if err := em.expenseStore.DeleteExpense(ctx, groupID, expenseID); err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return apperrors.NotFound("Expense", expenseID)
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// buildExpense validates the request against group membership and computes
// the participant shares. Participants are sorted by member id before the
// split so the centavo remainder always lands on the lowest id and the
// result is reproducible.
func buildExpense(group *types.SplitGroup, req *types.CreateExpenseRequest) (*types.SplitExpense, error) {
	money, err := valueobjects.NewMoneyFromString(req.Amount, string(valueobjects.ARS))
	if err != nil {
		return nil, err
	}
	if !money.IsPositive() {
		return nil, apperrors.ValidationFailed("invalid amount", "amount must be greater than zero")
	}

	memberIDs := make(map[string]bool, len(group.Members))
	for _, m := range group.Members {
		memberIDs[m.ID] = true
	}

	if !memberIDs[req.PaidByMemberID] {
		return nil, apperrors.ValidationFailed(
			"invalid payer",
			"the payer is not a member of the group",
		)
	}

	if len(req.ParticipantMemberIDs) == 0 {
		return nil, apperrors.ValidationFailed(
			"invalid participants",
			"at least one participant is required",
		)
	}

	participantIDs := make([]string, 0, len(req.ParticipantMemberIDs))
	seen := make(map[string]bool, len(req.ParticipantMemberIDs))
	for _, id := range req.ParticipantMemberIDs {
		if !memberIDs[id] {
			return nil, apperrors.ValidationFailed(
				"invalid participants",
				"one or more participants are not members of the group",
			)
		}
		if seen[id] {
			return nil, apperrors.ValidationFailed(
				"invalid participants",
				"a member appears more than once: "+id,
			)
		}
		seen[id] = true
		participantIDs = append(participantIDs, id)
	}
	sort.Strings(participantIDs)

	shares, err := money.Split(len(participantIDs))
	if err != nil {
		return nil, err
	}

	participants := make([]types.ExpenseParticipant, len(participantIDs))
	for i, id := range participantIDs {
		participants[i] = types.ExpenseParticipant{
			MemberID: id,
			Share:    shares[i].Amount(),
		}
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	return &types.SplitExpense{
		GroupID:      group.ID,
		Description:  req.Description,
		Amount:       money.Amount(),
		PaidByID:     req.PaidByMemberID,
		Date:         date,
		Participants: participants,
	}, nil
}
