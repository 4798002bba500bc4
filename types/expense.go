package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitExpense represents a shared expense within a group, paid in full by
// one member and divided among the participants.
type SplitExpense struct {
	ID           string               `json:"id"`
	GroupID      string               `json:"groupId"`
	Description  string               `json:"description"`
	Amount       decimal.Decimal      `json:"amount"`
	PaidByID     string               `json:"paidByMemberId"`
	Date         time.Time            `json:"date"`
	CreatedAt    time.Time            `json:"createdAt"`
	Participants []ExpenseParticipant `json:"participants,omitempty"`
}

// ExpenseParticipant joins an expense to a member with the member's computed
// share. Shares are created and replaced atomically with the parent expense
// and always sum exactly to the expense amount.
type ExpenseParticipant struct {
	ID        string          `json:"id"`
	ExpenseID string          `json:"expenseId"`
	MemberID  string          `json:"memberId"`
	Share     decimal.Decimal `json:"shareAmount"`
}

type CreateExpenseRequest struct {
	Description          string     `json:"description" binding:"required"`
	Amount               string     `json:"amount" binding:"required"`
	PaidByMemberID       string     `json:"paidByMemberId" binding:"required"`
	ParticipantMemberIDs []string   `json:"participantMemberIds" binding:"required"`
	Date                 *time.Time `json:"date"`
}
