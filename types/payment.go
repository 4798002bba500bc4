package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle of a gateway payment. The gateway callback
// is the only path into the terminal states.
type PaymentStatus string

const (
	PaymentStatusCreated    PaymentStatus = "created"
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusApproved   PaymentStatus = "approved"
	PaymentStatusRejected   PaymentStatus = "rejected"
	PaymentStatusSuperseded PaymentStatus = "superseded"
)

// IsTerminal reports whether no further gateway transition applies.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusRejected || s == PaymentStatusSuperseded
}

// Payment is a gateway checkout created against one directed member pair
// within one group. GatewayPaymentID stays nil until the gateway assigns one.
type Payment struct {
	ID                  string          `json:"id"`
	GroupID             string          `json:"groupId"`
	FromMemberID        string          `json:"fromMemberId"`
	ToMemberID          string          `json:"toMemberId"`
	Amount              decimal.Decimal `json:"amount"`
	GatewayPreferenceID *string         `json:"gatewayPreferenceId,omitempty"`
	GatewayPaymentID    *string         `json:"gatewayPaymentId,omitempty"`
	Status              PaymentStatus   `json:"status"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

type CreatePreferenceRequest struct {
	GroupID      string `json:"groupId" binding:"required"`
	FromMemberID string `json:"fromMemberId" binding:"required"`
	ToMemberID   string `json:"toMemberId" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
}

// CreatePreferenceResponse carries the gateway redirect the UI sends the
// payer to.
type CreatePreferenceResponse struct {
	PaymentID string `json:"paymentId"`
	InitPoint string `json:"initPoint"`
}
