package settlement

import (
	"sort"

	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/shopspring/decimal"
)

type party struct {
	memberID string
	amount   decimal.Decimal
}

// Simplify reduces a set of net balances to a small set of directed
// transfers using greedy largest-creditor/largest-debtor matching: the
// debtor owing the most pays the creditor owed the most, min(debt, credit)
// at a time, until every residual is within Tolerance.
//
// The greedy heuristic is not provably minimal in adversarial cases, but it
// terminates in at most (non-zero balances - 1) transfers, which is plenty
// at household scale. Equal magnitudes are tie-broken by ascending member id
// so the result is deterministic.
func Simplify(balances []types.MemberBalance) []types.Transfer {
	var creditors, debtors []party

	for _, b := range balances {
		switch {
		case b.NetBalance.GreaterThan(Tolerance):
			creditors = append(creditors, party{b.MemberID, b.NetBalance})
		case b.NetBalance.LessThan(Tolerance.Neg()):
			debtors = append(debtors, party{b.MemberID, b.NetBalance.Neg()})
		}
	}

	sortByAmountDesc(creditors)
	sortByAmountDesc(debtors)

	transfers := make([]types.Transfer, 0, len(creditors)+len(debtors))
	i, j := 0, 0

	for i < len(creditors) && j < len(debtors) {
		credit := creditors[i].amount
		debt := debtors[j].amount

		settle := decimal.Min(credit, debt)
		transfers = append(transfers, types.Transfer{
			FromMemberID: debtors[j].memberID,
			ToMemberID:   creditors[i].memberID,
			Amount:       settle.Round(2),
		})

		creditors[i].amount = credit.Sub(settle)
		debtors[j].amount = debt.Sub(settle)

		if creditors[i].amount.LessThan(Tolerance) {
			i++
		}
		if debtors[j].amount.LessThan(Tolerance) {
			j++
		}
	}

	return transfers
}

func sortByAmountDesc(parties []party) {
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].amount.Equal(parties[j].amount) {
			return parties[i].memberID < parties[j].memberID
		}
		return parties[i].amount.GreaterThan(parties[j].amount)
	})
}
