package models

import (
	"context"
	"testing"

	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func expenseTestGroup() *types.SplitGroup {
	return activeGroup(
		types.SplitGroupMember{ID: "m-1", DisplayName: "Ana", IsCreator: true},
		types.SplitGroupMember{ID: "m-2", DisplayName: "Bruno"},
		types.SplitGroupMember{ID: "m-3", DisplayName: "Carla"},
	)
}

func newExpenseModelForTest(groupStore *MockGroupStore, expenseStore *MockExpenseStore) *ExpenseModel {
	return NewExpenseModel(expenseStore, NewGroupModel(groupStore, new(MockContactStore)))
}

func TestExpenseModel_CreateExpense_SplitsEvenly(t *testing.T) {
	groupStore := new(MockGroupStore)
	expenseStore := new(MockExpenseStore)
	em := newExpenseModelForTest(groupStore, expenseStore)

	groupStore.On("GetGroup", mock.Anything, testGroupID, testOwnerID).
		Return(expenseTestGroup(), nil)

	var captured *types.SplitExpense
	expenseStore.On("CreateExpense", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*types.SplitExpense)
		}).
		Return("e-1", nil)
	expenseStore.On("GetExpense", mock.Anything, testGroupID, "e-1").
		Return(&types.SplitExpense{ID: "e-1"}, nil)

	_, err := em.CreateExpense(context.Background(), testOwnerID, testGroupID, &types.CreateExpenseRequest{
		Description:          "Supermercado",
		Amount:               "100.00",
		PaidByMemberID:       "m-1",
		ParticipantMemberIDs: []string{"m-2", "m-1"},
	})
	require.NoError(t, err)

	require.NotNil(t, captured)
	require.Len(t, captured.Participants, 2)
	// Participants sorted ascending so the remainder placement is stable.
	assert.Equal(t, "m-1", captured.Participants[0].MemberID)
	assert.Equal(t, "m-2", captured.Participants[1].MemberID)
	assert.True(t, captured.Participants[0].Share.Equal(decimal.RequireFromString("50")))
	assert.True(t, captured.Participants[1].Share.Equal(decimal.RequireFromString("50")))
}

func TestExpenseModel_CreateExpense_RemainderToLowestID(t *testing.T) {
	groupStore := new(MockGroupStore)
	expenseStore := new(MockExpenseStore)
	em := newExpenseModelForTest(groupStore, expenseStore)

	groupStore.On("GetGroup", mock.Anything, testGroupID, testOwnerID).
		Return(expenseTestGroup(), nil)

	var captured *types.SplitExpense
	expenseStore.On("CreateExpense", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*types.SplitExpense)
		}).
		Return("e-1", nil)
	expenseStore.On("GetExpense", mock.Anything, testGroupID, "e-1").
		Return(&types.SplitExpense{ID: "e-1"}, nil)

	_, err := em.CreateExpense(context.Background(), testOwnerID, testGroupID, &types.CreateExpenseRequest{
		Description:          "Cena",
		Amount:               "10.00",
		PaidByMemberID:       "m-1",
		ParticipantMemberIDs: []string{"m-3", "m-2", "m-1"},
	})
	require.NoError(t, err)

	require.NotNil(t, captured)
	require.Len(t, captured.Participants, 3)
	assert.True(t, captured.Participants[0].Share.Equal(decimal.RequireFromString("3.34")))
	assert.True(t, captured.Participants[1].Share.Equal(decimal.RequireFromString("3.33")))
	assert.True(t, captured.Participants[2].Share.Equal(decimal.RequireFromString("3.33")))

	sum := decimal.Zero
	for _, p := range captured.Participants {
		sum = sum.Add(p.Share)
	}
	assert.True(t, sum.Equal(captured.Amount))
}

func TestExpenseModel_CreateExpense_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  types.CreateExpenseRequest
	}{
		{
			name: "payer not a member",
			req: types.CreateExpenseRequest{
				Description: "x", Amount: "10.00",
				PaidByMemberID:       "m-ghost",
				ParticipantMemberIDs: []string{"m-1"},
			},
		},
		{
			name: "participant not a member",
			req: types.CreateExpenseRequest{
				Description: "x", Amount: "10.00",
				PaidByMemberID:       "m-1",
				ParticipantMemberIDs: []string{"m-ghost"},
			},
		},
		{
			name: "duplicate participant",
			req: types.CreateExpenseRequest{
				Description: "x", Amount: "10.00",
				PaidByMemberID:       "m-1",
				ParticipantMemberIDs: []string{"m-2", "m-2"},
			},
		},
		{
			name: "empty participants",
			req: types.CreateExpenseRequest{
				Description: "x", Amount: "10.00",
				PaidByMemberID:       "m-1",
				ParticipantMemberIDs: []string{},
			},
		},
		{
			name: "zero amount",
			req: types.CreateExpenseRequest{
				Description: "x", Amount: "0",
				PaidByMemberID:       "m-1",
				ParticipantMemberIDs: []string{"m-1"},
			},
		},
		{
			name: "negative amount",
			req: types.CreateExpenseRequest{
				Description: "x", Amount: "-5.00",
				PaidByMemberID:       "m-1",
				ParticipantMemberIDs: []string{"m-1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groupStore := new(MockGroupStore)
			expenseStore := new(MockExpenseStore)
			em := newExpenseModelForTest(groupStore, expenseStore)

			groupStore.On("GetGroup", mock.Anything, testGroupID, testOwnerID).
				Return(expenseTestGroup(), nil)

			_, err := em.CreateExpense(context.Background(), testOwnerID, testGroupID, &tt.req)

			assertAppErrorType(t, err, apperrors.ValidationError)
			expenseStore.AssertNotCalled(t, "CreateExpense")
		})
	}
}

func TestExpenseModel_CreateExpense_ClosedGroup(t *testing.T) {
	groupStore := new(MockGroupStore)
	expenseStore := new(MockExpenseStore)
	em := newExpenseModelForTest(groupStore, expenseStore)

	closed := expenseTestGroup()
	closed.IsActive = false
	groupStore.On("GetGroup", mock.Anything, testGroupID, testOwnerID).Return(closed, nil)

	_, err := em.CreateExpense(context.Background(), testOwnerID, testGroupID, &types.CreateExpenseRequest{
		Description: "x", Amount: "10.00",
		PaidByMemberID:       "m-1",
		ParticipantMemberIDs: []string{"m-1"},
	})

	assertAppErrorType(t, err, apperrors.ValidationError)
}

func TestExpenseModel_ListExpenses_ClosedGroupReadable(t *testing.T) {
	groupStore := new(MockGroupStore)
	expenseStore := new(MockExpenseStore)
	em := newExpenseModelForTest(groupStore, expenseStore)

	closed := expenseTestGroup()
	closed.IsActive = false
	groupStore.On("GetGroup", mock.Anything, testGroupID, testOwnerID).Return(closed, nil)
	expenseStore.On("ListExpenses", mock.Anything, testGroupID).
		Return([]types.SplitExpense{{ID: "e-1"}}, nil)

	expenses, err := em.ListExpenses(context.Background(), testOwnerID, testGroupID)

	require.NoError(t, err)
	assert.Len(t, expenses, 1)
}
