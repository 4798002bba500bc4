// Package settlement implements the pure computation pipeline of the group
// settlement engine: netting member balances from an expense snapshot and
// reducing them to a minimal practical set of transfers. Both functions are
// deterministic over their inputs so independent recomputations produce
// identical results.
package settlement

import (
	"fmt"
	"sort"

	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/shopspring/decimal"
)

// Tolerance under which a residual balance counts as settled (one centavo).
var Tolerance = decimal.New(1, -2)

// ComputeBalances derives each member's total paid, total share and net
// balance from the group's expenses. The payer of every expense is credited
// the full amount; every participant is debited their stored share.
//
// Persisted state that breaks an invariant is surfaced as a data-integrity
// error, never silently skipped: dropping an orphaned expense would break
// the zero-sum property and hide an upstream bug.
func ComputeBalances(members []types.SplitGroupMember, expenses []types.SplitExpense) ([]types.MemberBalance, error) {
	totalPaid := make(map[string]decimal.Decimal, len(members))
	totalShare := make(map[string]decimal.Decimal, len(members))
	names := make(map[string]string, len(members))

	for _, m := range members {
		totalPaid[m.ID] = decimal.Zero
		totalShare[m.ID] = decimal.Zero
		names[m.ID] = m.DisplayName
	}

	for _, expense := range expenses {
		if _, ok := totalPaid[expense.PaidByID]; !ok {
			return nil, apperrors.NewDataIntegrityError(
				"expense payer is not a group member",
				fmt.Sprintf("expense %s, payer %s", expense.ID, expense.PaidByID),
			)
		}
		totalPaid[expense.PaidByID] = totalPaid[expense.PaidByID].Add(expense.Amount)

		shareSum := decimal.Zero
		for _, p := range expense.Participants {
			if _, ok := totalShare[p.MemberID]; !ok {
				return nil, apperrors.NewDataIntegrityError(
					"expense participant is not a group member",
					fmt.Sprintf("expense %s, member %s", expense.ID, p.MemberID),
				)
			}
			totalShare[p.MemberID] = totalShare[p.MemberID].Add(p.Share)
			shareSum = shareSum.Add(p.Share)
		}

		if len(expense.Participants) == 0 {
			return nil, apperrors.NewDataIntegrityError(
				"expense has no participants",
				fmt.Sprintf("expense %s", expense.ID),
			)
		}
		if !shareSum.Equal(expense.Amount) {
			return nil, apperrors.NewDataIntegrityError(
				"participant shares do not sum to expense amount",
				fmt.Sprintf("expense %s: shares %s, amount %s",
					expense.ID, shareSum.String(), expense.Amount.String()),
			)
		}
	}

	balances := make([]types.MemberBalance, 0, len(members))
	for _, m := range members {
		paid := totalPaid[m.ID]
		share := totalShare[m.ID]
		balances = append(balances, types.MemberBalance{
			MemberID:    m.ID,
			DisplayName: names[m.ID],
			TotalPaid:   paid.Round(2),
			TotalShare:  share.Round(2),
			NetBalance:  paid.Sub(share).Round(2),
		})
	}

	// Ascending member id keeps the output byte-identical across runs.
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].MemberID < balances[j].MemberID
	})

	return balances, nil
}

// TotalExpenses sums all expense amounts in the snapshot, independent of how
// they were split.
func TotalExpenses(expenses []types.SplitExpense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total.Round(2)
}
