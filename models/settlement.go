package models

import (
	"context"

	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	"github.com/CuentaClara/cuenta-clara-backend/internal/settlement"
	istore "github.com/CuentaClara/cuenta-clara-backend/internal/store"
	"github.com/CuentaClara/cuenta-clara-backend/types"
)

// SettlementModel is the read facade of the settlement engine. Every call
// recomputes balances, transfers and payment overlay from the current
// snapshot; nothing is cached, so the summary always reflects the latest
// expense edits.
type SettlementModel struct {
	groupModel   *GroupModel
	expenseStore istore.ExpenseStore
	paymentStore istore.PaymentStore
}

// NewSettlementModel creates a new SettlementModel.
func NewSettlementModel(groupModel *GroupModel, expenseStore istore.ExpenseStore, paymentStore istore.PaymentStore) *SettlementModel {
	return &SettlementModel{
		groupModel:   groupModel,
		expenseStore: expenseStore,
		paymentStore: paymentStore,
	}
}

// GetGroupBalanceSummary composes the pipeline: expenses -> balances ->
// simplified transfers -> payment reconciliation. The first error wins; no
// partial results.
func (sm *SettlementModel) GetGroupBalanceSummary(ctx context.Context, ownerID string, groupID string) (*types.GroupBalanceSummary, error) {
	group, err := sm.groupModel.GetGroup(ctx, ownerID, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := sm.expenseStore.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	balances, err := settlement.ComputeBalances(group.Members, expenses)
	if err != nil {
		return nil, err
	}

	transfers := settlement.Simplify(balances)

	payments, err := sm.paymentStore.ListGroupPayments(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	settled := settlement.Reconcile(transfers, group.Members, payments)

	settlementComputations.Inc()

	return &types.GroupBalanceSummary{
		GroupID:         group.ID,
		GroupName:       group.Name,
		TotalExpenses:   settlement.TotalExpenses(expenses),
		Balances:        balances,
		SimplifiedDebts: settled,
	}, nil
}
