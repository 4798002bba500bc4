// Package store defines the persistence interfaces consumed by the models
// layer. Implementations live in the postgres subpackage; tests use
// testify mocks.
package store

import (
	"context"

	"github.com/CuentaClara/cuenta-clara-backend/types"
)

// GroupStore handles split-group and membership data operations. All reads
// are scoped to the owning user: a group is only visible to its creator.
type GroupStore interface {
	// CreateGroup inserts the group, its creator member and one member per
	// contact in a single transaction, returning the new group id.
	CreateGroup(ctx context.Context, group *types.SplitGroup, creatorDisplayName string, contacts []types.Contact) (string, error)
	GetGroup(ctx context.Context, id string, ownerID string) (*types.SplitGroup, error)
	ListGroups(ctx context.Context, ownerID string) ([]types.SplitGroup, error)
	UpdateGroup(ctx context.Context, id string, ownerID string, name string, description string) error
	SetGroupActive(ctx context.Context, id string, ownerID string, active bool) error

	AddMember(ctx context.Context, member *types.SplitGroupMember) (string, error)
	GetMember(ctx context.Context, groupID string, memberID string) (*types.SplitGroupMember, error)
	ListMembers(ctx context.Context, groupID string) ([]types.SplitGroupMember, error)
	RemoveMember(ctx context.Context, groupID string, memberID string) error
	// CountMemberParticipations reports how many expense shares reference the
	// member; removal is only legal at zero.
	CountMemberParticipations(ctx context.Context, memberID string) (int, error)
	// CountMemberPayments reports how many payment rows reference the member
	// on either end of a transfer edge; those rows keep a FK on the member.
	CountMemberPayments(ctx context.Context, memberID string) (int, error)
}

// ContactStore handles the contact records backing group members.
type ContactStore interface {
	CreateContact(ctx context.Context, contact *types.Contact) (string, error)
	GetContactsByIDs(ctx context.Context, ownerID string, ids []string) ([]types.Contact, error)
}

// ExpenseStore handles shared expenses and their participant shares.
// Participant sets are written and replaced atomically with the expense.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *types.SplitExpense) (string, error)
	UpdateExpense(ctx context.Context, expense *types.SplitExpense) error
	GetExpense(ctx context.Context, groupID string, expenseID string) (*types.SplitExpense, error)
	ListExpenses(ctx context.Context, groupID string) ([]types.SplitExpense, error)
	DeleteExpense(ctx context.Context, groupID string, expenseID string) error
}

// PaymentStore handles gateway payment records. At most one non-terminal
// payment may exist per (group, from, to) edge; CreatePayment returns a
// conflict error when the partial unique index rejects a duplicate.
type PaymentStore interface {
	// CreatePayment inserts a payment row with the caller-assigned id (the
	// id doubles as the gateway external reference, so it exists before the
	// row does).
	CreatePayment(ctx context.Context, payment *types.Payment) (string, error)
	GetPayment(ctx context.Context, id string) (*types.Payment, error)
	GetActivePaymentForEdge(ctx context.Context, groupID, fromMemberID, toMemberID string) (*types.Payment, error)
	ListGroupPayments(ctx context.Context, groupID string) ([]types.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, status types.PaymentStatus, gatewayPaymentID *string) error
}
