package types

import "github.com/shopspring/decimal"

// MemberBalance is one member's aggregate position in a group:
// NetBalance = TotalPaid - TotalShare. Positive means the group owes them.
type MemberBalance struct {
	MemberID    string          `json:"memberId"`
	DisplayName string          `json:"displayName"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	TotalShare  decimal.Decimal `json:"totalShare"`
	NetBalance  decimal.Decimal `json:"netBalance"`
}

// Transfer is a directed settlement edge produced by debt simplification.
type Transfer struct {
	FromMemberID string          `json:"fromMemberId"`
	ToMemberID   string          `json:"toMemberId"`
	Amount       decimal.Decimal `json:"amount"`
}

// TransferPaymentStatus is the reconciled payment state of a transfer edge.
type TransferPaymentStatus string

const (
	TransferUnpaid   TransferPaymentStatus = "unpaid"
	TransferPending  TransferPaymentStatus = "pending"
	TransferApproved TransferPaymentStatus = "approved"
)

// SettledTransfer augments a Transfer with display names, the creditor's
// payout coordinates and the status of any payment on the same edge.
type SettledTransfer struct {
	FromMemberID    string                `json:"fromMemberId"`
	FromDisplayName string                `json:"fromDisplayName"`
	ToMemberID      string                `json:"toMemberId"`
	ToDisplayName   string                `json:"toDisplayName"`
	Amount          decimal.Decimal       `json:"amount"`
	ToBankAlias     *string               `json:"toBankAlias,omitempty"`
	ToCVU           *string               `json:"toCvu,omitempty"`
	PaymentStatus   TransferPaymentStatus `json:"paymentStatus"`
	PaymentID       *string               `json:"paymentId,omitempty"`
	PaidAmount      *decimal.Decimal      `json:"paidAmount,omitempty"`
}

// GroupBalanceSummary is the settlement facade response: every call
// recomputes it from the current expense snapshot.
type GroupBalanceSummary struct {
	GroupID         string            `json:"groupId"`
	GroupName       string            `json:"groupName"`
	TotalExpenses   decimal.Decimal   `json:"totalExpenses"`
	Balances        []MemberBalance   `json:"balances"`
	SimplifiedDebts []SettledTransfer `json:"simplifiedDebts"`
}
