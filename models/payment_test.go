package models

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	"github.com/CuentaClara/cuenta-clara-backend/internal/gateway"
	istore "github.com/CuentaClara/cuenta-clara-backend/internal/store"
	"github.com/CuentaClara/cuenta-clara-backend/services"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testEdgeLockKey = "payment-edge:group-1:m-2:m-1"

type paymentTestDeps struct {
	groupStore   *MockGroupStore
	paymentStore *MockPaymentStore
	gatewayMock  *MockGatewayClient
	redisMock    redismock.ClientMock
	model        *PaymentModel
}

func newPaymentModelForTest(t *testing.T) *paymentTestDeps {
	t.Helper()

	redisClient, redisMock := redismock.NewClientMock()
	deps := &paymentTestDeps{
		groupStore:   new(MockGroupStore),
		paymentStore: new(MockPaymentStore),
		gatewayMock:  new(MockGatewayClient),
		redisMock:    redisMock,
	}
	deps.model = NewPaymentModel(
		deps.paymentStore,
		NewGroupModel(deps.groupStore, new(MockContactStore)),
		deps.gatewayMock,
		services.NewPaymentLockService(redisClient, 30*time.Second),
		"http://localhost:8080/v1/payments/webhook",
		30*time.Minute,
	)
	return deps
}

func paymentTestGroup() *types.SplitGroup {
	return activeGroup(
		types.SplitGroupMember{ID: "m-1", DisplayName: "Ana", IsCreator: true},
		types.SplitGroupMember{ID: "m-2", DisplayName: "Bruno"},
	)
}

func preferenceRequest() *types.CreatePreferenceRequest {
	return &types.CreatePreferenceRequest{
		GroupID:      testGroupID,
		FromMemberID: "m-2",
		ToMemberID:   "m-1",
		Amount:       "50.00",
	}
}

func expectMembersOnEdge(deps *paymentTestDeps) {
	deps.groupStore.On("GetGroup", mock.Anything, testGroupID, testOwnerID).
		Return(paymentTestGroup(), nil)
	deps.groupStore.On("GetMember", mock.Anything, testGroupID, "m-2").
		Return(&types.SplitGroupMember{ID: "m-2", DisplayName: "Bruno"}, nil)
	deps.groupStore.On("GetMember", mock.Anything, testGroupID, "m-1").
		Return(&types.SplitGroupMember{ID: "m-1", DisplayName: "Ana"}, nil)
}

func TestPaymentModel_CreatePreference(t *testing.T) {
	deps := newPaymentModelForTest(t)
	expectMembersOnEdge(deps)

	deps.redisMock.ExpectSetNX(testEdgeLockKey, "1", 30*time.Second).SetVal(true)
	deps.redisMock.ExpectDel(testEdgeLockKey).SetVal(1)

	deps.paymentStore.On("GetActivePaymentForEdge", mock.Anything, testGroupID, "m-2", "m-1").
		Return(nil, istore.ErrNotFound)
	deps.gatewayMock.On("CreatePreference", mock.Anything, mock.MatchedBy(func(req *gateway.PreferenceRequest) bool {
		return strings.HasPrefix(req.ExternalReference, "payment_") &&
			req.NotificationURL == "http://localhost:8080/v1/payments/webhook" &&
			len(req.Items) == 1 &&
			req.Items[0].UnitPrice == 50.0 &&
			req.Items[0].CurrencyID == "ARS"
	})).Return(&gateway.Preference{ID: "pref-1", InitPoint: "https://mp.example/init"}, nil)

	var inserted *types.Payment
	deps.paymentStore.On("CreatePayment", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(*types.Payment)
		}).
		Return("ignored", nil)

	resp, err := deps.model.CreatePreference(context.Background(), testOwnerID, preferenceRequest())
	require.NoError(t, err)

	assert.Equal(t, "https://mp.example/init", resp.InitPoint)
	require.NotNil(t, inserted)
	assert.Equal(t, resp.PaymentID, inserted.ID)
	assert.Equal(t, types.PaymentStatusCreated, inserted.Status)
	require.NotNil(t, inserted.GatewayPreferenceID)
	assert.Equal(t, "pref-1", *inserted.GatewayPreferenceID)
	assert.True(t, inserted.Amount.Equal(decimal.RequireFromString("50")))
}

func TestPaymentModel_CreatePreference_GatewayFailureWritesNothing(t *testing.T) {
	deps := newPaymentModelForTest(t)
	expectMembersOnEdge(deps)

	deps.redisMock.ExpectSetNX(testEdgeLockKey, "1", 30*time.Second).SetVal(true)
	deps.redisMock.ExpectDel(testEdgeLockKey).SetVal(1)

	deps.paymentStore.On("GetActivePaymentForEdge", mock.Anything, testGroupID, "m-2", "m-1").
		Return(nil, istore.ErrNotFound)
	deps.gatewayMock.On("CreatePreference", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("gateway timeout"))

	_, err := deps.model.CreatePreference(context.Background(), testOwnerID, preferenceRequest())

	assertAppErrorType(t, err, apperrors.ExternalServiceError)
	deps.paymentStore.AssertNotCalled(t, "CreatePayment")
}

func TestPaymentModel_CreatePreference_ActiveEdgeConflict(t *testing.T) {
	deps := newPaymentModelForTest(t)
	expectMembersOnEdge(deps)

	deps.redisMock.ExpectSetNX(testEdgeLockKey, "1", 30*time.Second).SetVal(true)
	deps.redisMock.ExpectDel(testEdgeLockKey).SetVal(1)

	deps.paymentStore.On("GetActivePaymentForEdge", mock.Anything, testGroupID, "m-2", "m-1").
		Return(&types.Payment{
			ID:        "p-0",
			Status:    types.PaymentStatusPending,
			CreatedAt: time.Now().Add(-5 * time.Minute),
		}, nil)

	_, err := deps.model.CreatePreference(context.Background(), testOwnerID, preferenceRequest())

	assertAppErrorType(t, err, apperrors.ConflictError)
	deps.gatewayMock.AssertNotCalled(t, "CreatePreference")
}

func TestPaymentModel_CreatePreference_SupersedesStalePending(t *testing.T) {
	deps := newPaymentModelForTest(t)
	expectMembersOnEdge(deps)

	deps.redisMock.ExpectSetNX(testEdgeLockKey, "1", 30*time.Second).SetVal(true)
	deps.redisMock.ExpectDel(testEdgeLockKey).SetVal(1)

	deps.paymentStore.On("GetActivePaymentForEdge", mock.Anything, testGroupID, "m-2", "m-1").
		Return(&types.Payment{
			ID:        "p-0",
			Status:    types.PaymentStatusPending,
			CreatedAt: time.Now().Add(-45 * time.Minute),
		}, nil)
	deps.paymentStore.On("UpdatePaymentStatus", mock.Anything, "p-0", types.PaymentStatusSuperseded, (*string)(nil)).
		Return(nil)
	deps.gatewayMock.On("CreatePreference", mock.Anything, mock.Anything).
		Return(&gateway.Preference{ID: "pref-1", InitPoint: "https://mp.example/init"}, nil)
	deps.paymentStore.On("CreatePayment", mock.Anything, mock.Anything).
		Return("ignored", nil)

	_, err := deps.model.CreatePreference(context.Background(), testOwnerID, preferenceRequest())

	require.NoError(t, err)
	deps.paymentStore.AssertExpectations(t)
}

func TestPaymentModel_CreatePreference_LockContention(t *testing.T) {
	deps := newPaymentModelForTest(t)
	expectMembersOnEdge(deps)

	deps.redisMock.ExpectSetNX(testEdgeLockKey, "1", 30*time.Second).SetVal(false)

	_, err := deps.model.CreatePreference(context.Background(), testOwnerID, preferenceRequest())

	assertAppErrorType(t, err, apperrors.ConflictError)
	deps.paymentStore.AssertNotCalled(t, "GetActivePaymentForEdge")
}

func TestPaymentModel_CreatePreference_DuplicateEdgeRace(t *testing.T) {
	deps := newPaymentModelForTest(t)
	expectMembersOnEdge(deps)

	deps.redisMock.ExpectSetNX(testEdgeLockKey, "1", 30*time.Second).SetVal(true)
	deps.redisMock.ExpectDel(testEdgeLockKey).SetVal(1)

	deps.paymentStore.On("GetActivePaymentForEdge", mock.Anything, testGroupID, "m-2", "m-1").
		Return(nil, istore.ErrNotFound)
	deps.gatewayMock.On("CreatePreference", mock.Anything, mock.Anything).
		Return(&gateway.Preference{ID: "pref-1", InitPoint: "https://mp.example/init"}, nil)
	deps.paymentStore.On("CreatePayment", mock.Anything, mock.Anything).
		Return("", istore.ErrDuplicateEdge)

	_, err := deps.model.CreatePreference(context.Background(), testOwnerID, preferenceRequest())

	assertAppErrorType(t, err, apperrors.ConflictError)
}

func TestPaymentModel_CreatePreference_SameMemberEdge(t *testing.T) {
	deps := newPaymentModelForTest(t)
	deps.groupStore.On("GetGroup", mock.Anything, testGroupID, testOwnerID).
		Return(paymentTestGroup(), nil)

	req := preferenceRequest()
	req.ToMemberID = req.FromMemberID

	_, err := deps.model.CreatePreference(context.Background(), testOwnerID, req)

	assertAppErrorType(t, err, apperrors.ValidationError)
}

func TestPaymentModel_HandleWebhook_Approves(t *testing.T) {
	deps := newPaymentModelForTest(t)

	deps.gatewayMock.On("GetPayment", mock.Anything, "123").
		Return(&gateway.PaymentInfo{ID: 123, Status: "approved", ExternalReference: "payment_p-1"}, nil)
	deps.paymentStore.On("GetPayment", mock.Anything, "p-1").
		Return(&types.Payment{ID: "p-1", Status: types.PaymentStatusPending}, nil)
	gatewayID := "123"
	deps.paymentStore.On("UpdatePaymentStatus", mock.Anything, "p-1", types.PaymentStatusApproved, &gatewayID).
		Return(nil)

	err := deps.model.HandleWebhook(context.Background(), "123")

	require.NoError(t, err)
	deps.paymentStore.AssertExpectations(t)
}

func TestPaymentModel_HandleWebhook_TerminalReplayIgnored(t *testing.T) {
	deps := newPaymentModelForTest(t)

	deps.gatewayMock.On("GetPayment", mock.Anything, "123").
		Return(&gateway.PaymentInfo{ID: 123, Status: "approved", ExternalReference: "payment_p-1"}, nil)
	deps.paymentStore.On("GetPayment", mock.Anything, "p-1").
		Return(&types.Payment{ID: "p-1", Status: types.PaymentStatusApproved}, nil)

	err := deps.model.HandleWebhook(context.Background(), "123")

	require.NoError(t, err)
	deps.paymentStore.AssertNotCalled(t, "UpdatePaymentStatus")
}

func TestPaymentModel_HandleWebhook_ForeignReferenceIgnored(t *testing.T) {
	deps := newPaymentModelForTest(t)

	deps.gatewayMock.On("GetPayment", mock.Anything, "123").
		Return(&gateway.PaymentInfo{ID: 123, Status: "approved", ExternalReference: "order-42"}, nil)

	err := deps.model.HandleWebhook(context.Background(), "123")

	require.NoError(t, err)
	deps.paymentStore.AssertNotCalled(t, "GetPayment")
}

func TestPaymentModel_HandleWebhook_UnknownPaymentIgnored(t *testing.T) {
	deps := newPaymentModelForTest(t)

	deps.gatewayMock.On("GetPayment", mock.Anything, "123").
		Return(&gateway.PaymentInfo{ID: 123, Status: "approved", ExternalReference: "payment_p-gone"}, nil)
	deps.paymentStore.On("GetPayment", mock.Anything, "p-gone").
		Return(nil, istore.ErrNotFound)

	err := deps.model.HandleWebhook(context.Background(), "123")

	require.NoError(t, err)
	deps.paymentStore.AssertNotCalled(t, "UpdatePaymentStatus")
}

func TestPaymentModel_HandleWebhook_RejectedStatuses(t *testing.T) {
	for _, gatewayStatus := range []string{"rejected", "cancelled", "refunded", "charged_back"} {
		t.Run(gatewayStatus, func(t *testing.T) {
			deps := newPaymentModelForTest(t)

			deps.gatewayMock.On("GetPayment", mock.Anything, "123").
				Return(&gateway.PaymentInfo{ID: 123, Status: gatewayStatus, ExternalReference: "payment_p-1"}, nil)
			deps.paymentStore.On("GetPayment", mock.Anything, "p-1").
				Return(&types.Payment{ID: "p-1", Status: types.PaymentStatusPending}, nil)
			gatewayID := "123"
			deps.paymentStore.On("UpdatePaymentStatus", mock.Anything, "p-1", types.PaymentStatusRejected, &gatewayID).
				Return(nil)

			err := deps.model.HandleWebhook(context.Background(), "123")

			require.NoError(t, err)
			deps.paymentStore.AssertExpectations(t)
		})
	}
}

func TestPaymentModel_GetPaymentStatus_RefreshesPending(t *testing.T) {
	deps := newPaymentModelForTest(t)

	deps.paymentStore.On("GetPayment", mock.Anything, "p-1").
		Return(&types.Payment{ID: "p-1", GroupID: testGroupID, Status: types.PaymentStatusPending}, nil)
	deps.groupStore.On("GetGroup", mock.Anything, testGroupID, testOwnerID).
		Return(paymentTestGroup(), nil)
	deps.gatewayMock.On("SearchPaymentsByReference", mock.Anything, "payment_p-1").
		Return([]gateway.PaymentInfo{{ID: 123, Status: "approved", ExternalReference: "payment_p-1"}}, nil)
	gatewayID := "123"
	deps.paymentStore.On("UpdatePaymentStatus", mock.Anything, "p-1", types.PaymentStatusApproved, &gatewayID).
		Return(nil)

	payment, err := deps.model.GetPaymentStatus(context.Background(), testOwnerID, "p-1")

	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusApproved, payment.Status)
	require.NotNil(t, payment.GatewayPaymentID)
	assert.Equal(t, "123", *payment.GatewayPaymentID)
}

func TestPaymentModel_GetPaymentStatus_GatewayDownReturnsStored(t *testing.T) {
	deps := newPaymentModelForTest(t)

	deps.paymentStore.On("GetPayment", mock.Anything, "p-1").
		Return(&types.Payment{ID: "p-1", GroupID: testGroupID, Status: types.PaymentStatusPending}, nil)
	deps.groupStore.On("GetGroup", mock.Anything, testGroupID, testOwnerID).
		Return(paymentTestGroup(), nil)
	deps.gatewayMock.On("SearchPaymentsByReference", mock.Anything, "payment_p-1").
		Return(nil, fmt.Errorf("gateway down"))

	payment, err := deps.model.GetPaymentStatus(context.Background(), testOwnerID, "p-1")

	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusPending, payment.Status)
}

func TestPaymentModel_GetPaymentStatus_TerminalNoRefresh(t *testing.T) {
	deps := newPaymentModelForTest(t)

	deps.paymentStore.On("GetPayment", mock.Anything, "p-1").
		Return(&types.Payment{ID: "p-1", GroupID: testGroupID, Status: types.PaymentStatusApproved}, nil)
	deps.groupStore.On("GetGroup", mock.Anything, testGroupID, testOwnerID).
		Return(paymentTestGroup(), nil)

	payment, err := deps.model.GetPaymentStatus(context.Background(), testOwnerID, "p-1")

	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusApproved, payment.Status)
	deps.gatewayMock.AssertNotCalled(t, "SearchPaymentsByReference")
}
