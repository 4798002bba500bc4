package models

import (
	"context"
	"testing"

	"github.com/CuentaClara/cuenta-clara-backend/internal/gateway"
	"github.com/CuentaClara/cuenta-clara-backend/logger"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	m.Run()
}

type MockGroupStore struct {
	mock.Mock
}

func (m *MockGroupStore) CreateGroup(ctx context.Context, group *types.SplitGroup, creatorDisplayName string, contacts []types.Contact) (string, error) {
	args := m.Called(ctx, group, creatorDisplayName, contacts)
	return args.String(0), args.Error(1)
}

func (m *MockGroupStore) GetGroup(ctx context.Context, id string, ownerID string) (*types.SplitGroup, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SplitGroup), args.Error(1)
}

func (m *MockGroupStore) ListGroups(ctx context.Context, ownerID string) ([]types.SplitGroup, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.SplitGroup), args.Error(1)
}

func (m *MockGroupStore) UpdateGroup(ctx context.Context, id string, ownerID string, name string, description string) error {
	args := m.Called(ctx, id, ownerID, name, description)
	return args.Error(0)
}

func (m *MockGroupStore) SetGroupActive(ctx context.Context, id string, ownerID string, active bool) error {
	args := m.Called(ctx, id, ownerID, active)
	return args.Error(0)
}

func (m *MockGroupStore) AddMember(ctx context.Context, member *types.SplitGroupMember) (string, error) {
	args := m.Called(ctx, member)
	return args.String(0), args.Error(1)
}

func (m *MockGroupStore) GetMember(ctx context.Context, groupID string, memberID string) (*types.SplitGroupMember, error) {
	args := m.Called(ctx, groupID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SplitGroupMember), args.Error(1)
}

func (m *MockGroupStore) ListMembers(ctx context.Context, groupID string) ([]types.SplitGroupMember, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.SplitGroupMember), args.Error(1)
}

func (m *MockGroupStore) RemoveMember(ctx context.Context, groupID string, memberID string) error {
	args := m.Called(ctx, groupID, memberID)
	return args.Error(0)
}

func (m *MockGroupStore) CountMemberParticipations(ctx context.Context, memberID string) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

func (m *MockGroupStore) CountMemberPayments(ctx context.Context, memberID string) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

type MockContactStore struct {
	mock.Mock
}

func (m *MockContactStore) CreateContact(ctx context.Context, contact *types.Contact) (string, error) {
	args := m.Called(ctx, contact)
	return args.String(0), args.Error(1)
}

func (m *MockContactStore) GetContactsByIDs(ctx context.Context, ownerID string, ids []string) ([]types.Contact, error) {
	args := m.Called(ctx, ownerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Contact), args.Error(1)
}

type MockExpenseStore struct {
	mock.Mock
}

func (m *MockExpenseStore) CreateExpense(ctx context.Context, expense *types.SplitExpense) (string, error) {
	args := m.Called(ctx, expense)
	return args.String(0), args.Error(1)
}

func (m *MockExpenseStore) UpdateExpense(ctx context.Context, expense *types.SplitExpense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseStore) GetExpense(ctx context.Context, groupID string, expenseID string) (*types.SplitExpense, error) {
	args := m.Called(ctx, groupID, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SplitExpense), args.Error(1)
}

func (m *MockExpenseStore) ListExpenses(ctx context.Context, groupID string) ([]types.SplitExpense, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.SplitExpense), args.Error(1)
}

func (m *MockExpenseStore) DeleteExpense(ctx context.Context, groupID string, expenseID string) error {
	args := m.Called(ctx, groupID, expenseID)
	return args.Error(0)
}

type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) CreatePayment(ctx context.Context, payment *types.Payment) (string, error) {
	args := m.Called(ctx, payment)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentStore) GetPayment(ctx context.Context, id string) (*types.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Payment), args.Error(1)
}

func (m *MockPaymentStore) GetActivePaymentForEdge(ctx context.Context, groupID, fromMemberID, toMemberID string) (*types.Payment, error) {
	args := m.Called(ctx, groupID, fromMemberID, toMemberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Payment), args.Error(1)
}

func (m *MockPaymentStore) ListGroupPayments(ctx context.Context, groupID string) ([]types.Payment, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Payment), args.Error(1)
}

func (m *MockPaymentStore) UpdatePaymentStatus(ctx context.Context, id string, status types.PaymentStatus, gatewayPaymentID *string) error {
	args := m.Called(ctx, id, status, gatewayPaymentID)
	return args.Error(0)
}

type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) CreatePreference(ctx context.Context, req *gateway.PreferenceRequest) (*gateway.Preference, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Preference), args.Error(1)
}

func (m *MockGatewayClient) GetPayment(ctx context.Context, gatewayPaymentID string) (*gateway.PaymentInfo, error) {
	args := m.Called(ctx, gatewayPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PaymentInfo), args.Error(1)
}

func (m *MockGatewayClient) SearchPaymentsByReference(ctx context.Context, externalReference string) ([]gateway.PaymentInfo, error) {
	args := m.Called(ctx, externalReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gateway.PaymentInfo), args.Error(1)
}
