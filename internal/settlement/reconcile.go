package settlement

import (
	"sort"

	"github.com/CuentaClara/cuenta-clara-backend/types"
)

// Reconcile overlays payment state onto the simplified transfers. For each
// directed edge only the most recent payment is authoritative:
//
//   - no payment (or a rejected/superseded one) -> "unpaid", actionable
//   - pending  -> a checkout is in flight, the UI must not start another
//   - approved -> settled; kept in the list for history
//
// The creditor's payout coordinates are resolved through their linked
// contact when one is configured.
func Reconcile(transfers []types.Transfer, members []types.SplitGroupMember, payments []types.Payment) []types.SettledTransfer {
	memberByID := make(map[string]types.SplitGroupMember, len(members))
	for _, m := range members {
		memberByID[m.ID] = m
	}

	// Sort locally, most recent first, so callers need not guarantee any
	// ordering; the first hit per edge wins.
	sorted := make([]types.Payment, len(payments))
	copy(sorted, payments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	type edge struct{ from, to string }
	latest := make(map[edge]types.Payment)
	for _, p := range sorted {
		if p.Status == types.PaymentStatusSuperseded {
			continue
		}
		key := edge{p.FromMemberID, p.ToMemberID}
		if _, seen := latest[key]; !seen {
			latest[key] = p
		}
	}

	settled := make([]types.SettledTransfer, 0, len(transfers))
	for _, t := range transfers {
		st := types.SettledTransfer{
			FromMemberID:  t.FromMemberID,
			ToMemberID:    t.ToMemberID,
			Amount:        t.Amount,
			PaymentStatus: types.TransferUnpaid,
		}

		if from, ok := memberByID[t.FromMemberID]; ok {
			st.FromDisplayName = from.DisplayName
		}
		if to, ok := memberByID[t.ToMemberID]; ok {
			st.ToDisplayName = to.DisplayName
			if to.Contact != nil {
				st.ToBankAlias = to.Contact.BankAlias
				st.ToCVU = to.Contact.CVU
			}
		}

		if p, ok := latest[edge{t.FromMemberID, t.ToMemberID}]; ok {
			switch p.Status {
			case types.PaymentStatusCreated, types.PaymentStatusPending:
				id := p.ID
				st.PaymentStatus = types.TransferPending
				st.PaymentID = &id
			case types.PaymentStatusApproved:
				id := p.ID
				amount := p.Amount
				st.PaymentStatus = types.TransferApproved
				st.PaymentID = &id
				st.PaidAmount = &amount
			}
			// A rejected payment leaves the edge actionable again.
		}

		settled = append(settled, st)
	}

	return settled
}
