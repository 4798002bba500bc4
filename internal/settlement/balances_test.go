package settlement

import (
	"testing"

	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(id, name string) types.SplitGroupMember {
	return types.SplitGroupMember{ID: id, DisplayName: name}
}

func expense(id, paidBy string, amount string, shares map[string]string) types.SplitExpense {
	e := types.SplitExpense{
		ID:       id,
		PaidByID: paidBy,
		Amount:   decimal.RequireFromString(amount),
	}
	for memberID, share := range shares {
		e.Participants = append(e.Participants, types.ExpenseParticipant{
			MemberID: memberID,
			Share:    decimal.RequireFromString(share),
		})
	}
	return e
}

func TestComputeBalances_TwoMemberSplit(t *testing.T) {
	members := []types.SplitGroupMember{member("m-a", "Ana"), member("m-b", "Bruno")}
	expenses := []types.SplitExpense{
		expense("e1", "m-a", "100.00", map[string]string{"m-a": "50.00", "m-b": "50.00"}),
	}

	balances, err := ComputeBalances(members, expenses)
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.Equal(t, "m-a", balances[0].MemberID)
	assert.True(t, balances[0].NetBalance.Equal(decimal.RequireFromString("50")),
		"got %s", balances[0].NetBalance)
	assert.Equal(t, "m-b", balances[1].MemberID)
	assert.True(t, balances[1].NetBalance.Equal(decimal.RequireFromString("-50")),
		"got %s", balances[1].NetBalance)
}

func TestComputeBalances_ZeroSum(t *testing.T) {
	members := []types.SplitGroupMember{member("m-a", "Ana"), member("m-b", "Bruno"), member("m-c", "Carla")}
	expenses := []types.SplitExpense{
		expense("e1", "m-a", "90.00", map[string]string{"m-a": "30.00", "m-b": "30.00", "m-c": "30.00"}),
		expense("e2", "m-b", "30.00", map[string]string{"m-a": "15.00", "m-b": "15.00"}),
		expense("e3", "m-c", "10.00", map[string]string{"m-a": "3.34", "m-b": "3.33", "m-c": "3.33"}),
	}

	balances, err := ComputeBalances(members, expenses)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, b := range balances {
		sum = sum.Add(b.NetBalance)
	}
	assert.True(t, sum.IsZero(), "net balances must sum to zero, got %s", sum)
}

func TestComputeBalances_NoExpenses(t *testing.T) {
	members := []types.SplitGroupMember{member("m-a", "Ana"), member("m-b", "Bruno")}

	balances, err := ComputeBalances(members, nil)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	for _, b := range balances {
		assert.True(t, b.NetBalance.IsZero())
	}
}

func TestComputeBalances_SortedByMemberID(t *testing.T) {
	members := []types.SplitGroupMember{member("m-z", "Zoe"), member("m-a", "Ana"), member("m-k", "Kim")}

	balances, err := ComputeBalances(members, nil)
	require.NoError(t, err)
	require.Len(t, balances, 3)
	assert.Equal(t, "m-a", balances[0].MemberID)
	assert.Equal(t, "m-k", balances[1].MemberID)
	assert.Equal(t, "m-z", balances[2].MemberID)
}

func TestComputeBalances_IntegrityErrors(t *testing.T) {
	members := []types.SplitGroupMember{member("m-a", "Ana"), member("m-b", "Bruno")}

	tests := []struct {
		name    string
		expense types.SplitExpense
	}{
		{
			name:    "payer not a member",
			expense: expense("e1", "m-ghost", "10.00", map[string]string{"m-a": "10.00"}),
		},
		{
			name:    "participant not a member",
			expense: expense("e1", "m-a", "10.00", map[string]string{"m-ghost": "10.00"}),
		},
		{
			name:    "no participants",
			expense: expense("e1", "m-a", "10.00", nil),
		},
		{
			name:    "shares do not sum to amount",
			expense: expense("e1", "m-a", "10.00", map[string]string{"m-a": "5.00", "m-b": "4.00"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeBalances(members, []types.SplitExpense{tt.expense})
			require.Error(t, err)

			appErr, ok := err.(*apperrors.AppError)
			require.True(t, ok)
			assert.Equal(t, apperrors.DataIntegrityError, appErr.Type)
			assert.Equal(t, 500, appErr.GetHTTPStatus())
		})
	}
}

func TestTotalExpenses(t *testing.T) {
	expenses := []types.SplitExpense{
		expense("e1", "m-a", "100.00", map[string]string{"m-a": "100.00"}),
		expense("e2", "m-a", "0.50", map[string]string{"m-a": "0.50"}),
	}
	assert.True(t, TotalExpenses(expenses).Equal(decimal.RequireFromString("100.50")))
	assert.True(t, TotalExpenses(nil).IsZero())
}
