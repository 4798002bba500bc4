package models

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	"github.com/CuentaClara/cuenta-clara-backend/internal/gateway"
	istore "github.com/CuentaClara/cuenta-clara-backend/internal/store"
	"github.com/CuentaClara/cuenta-clara-backend/logger"
	"github.com/CuentaClara/cuenta-clara-backend/pkg/valueobjects"
	"github.com/CuentaClara/cuenta-clara-backend/services"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/google/uuid"
)

// externalReferencePrefix ties a gateway payment back to our payment row.
// The payment id is assigned before the gateway call so the reference exists
// before the row does; the row is only inserted after the gateway accepts
// the preference.
const externalReferencePrefix = "payment_"

// PaymentModel drives the gateway payment lifecycle: checkout creation,
// status refresh and webhook ingestion.
type PaymentModel struct {
	paymentStore    istore.PaymentStore
	groupModel      *GroupModel
	gateway         gateway.Client
	lockService     *services.PaymentLockService
	notificationURL string
	pendingTTL      time.Duration
}

// NewPaymentModel creates a new PaymentModel. notificationURL is the full
// webhook endpoint the gateway calls back on; pendingTTL is how long a
// non-terminal payment blocks its transfer edge before a new checkout may
// supersede it.
func NewPaymentModel(
	paymentStore istore.PaymentStore,
	groupModel *GroupModel,
	gatewayClient gateway.Client,
	lockService *services.PaymentLockService,
	notificationURL string,
	pendingTTL time.Duration,
) *PaymentModel {
	return &PaymentModel{
		paymentStore:    paymentStore,
		groupModel:      groupModel,
		gateway:         gatewayClient,
		lockService:     lockService,
		notificationURL: notificationURL,
		pendingTTL:      pendingTTL,
	}
}

// CreatePreference creates a gateway checkout for one directed transfer edge.
// Fails closed: if the gateway call does not succeed, no payment row is
// written and the edge stays free.
func (pm *PaymentModel) CreatePreference(ctx context.Context, ownerID string, req *types.CreatePreferenceRequest) (*types.CreatePreferenceResponse, error) {
	log := logger.GetLogger()

	group, err := pm.groupModel.requireActiveGroup(ctx, ownerID, req.GroupID)
	if err != nil {
		return nil, err
	}

	if req.FromMemberID == req.ToMemberID {
		return nil, apperrors.ValidationFailed(
			"invalid transfer",
			"payer and receiver must be different members",
		)
	}

	from, err := pm.groupModel.getMember(ctx, req.GroupID, req.FromMemberID)
	if err != nil {
		return nil, err
	}
	to, err := pm.groupModel.getMember(ctx, req.GroupID, req.ToMemberID)
	if err != nil {
		return nil, err
	}

	money, err := valueobjects.NewMoneyFromString(req.Amount, string(valueobjects.ARS))
	if err != nil {
		return nil, err
	}
	if !money.IsPositive() {
		return nil, apperrors.ValidationFailed("invalid amount", "amount must be greater than zero")
	}

	release, acquired := pm.lockService.AcquireEdgeLock(ctx, req.GroupID, req.FromMemberID, req.ToMemberID)
	if !acquired {
		return nil, apperrors.NewConflictError(
			"payment already in progress",
			"another payment for this transfer is being created",
		)
	}
	defer release()

	if err := pm.clearEdge(ctx, req.GroupID, req.FromMemberID, req.ToMemberID); err != nil {
		return nil, err
	}

	paymentID := uuid.New().String()

	pref, err := pm.gateway.CreatePreference(ctx, &gateway.PreferenceRequest{
		Items: []gateway.PreferenceItem{{
			Title:       "Transferencia en " + group.Name,
			Description: from.DisplayName + " -> " + to.DisplayName,
			Quantity:    1,
			UnitPrice:   money.Amount().InexactFloat64(),
			CurrencyID:  string(valueobjects.ARS),
		}},
		NotificationURL:   pm.notificationURL,
		ExternalReference: externalReferencePrefix + paymentID,
	})
	if err != nil {
		gatewayCalls.WithLabelValues("create_preference", "error").Inc()
		log.Errorw("Gateway preference creation failed",
			"groupId", req.GroupID, "from", req.FromMemberID, "to", req.ToMemberID, "error", err)
		return nil, apperrors.NewExternalServiceError("Mercado Pago", err)
	}
	gatewayCalls.WithLabelValues("create_preference", "ok").Inc()

	payment := &types.Payment{
		ID:                  paymentID,
		GroupID:             req.GroupID,
		FromMemberID:        req.FromMemberID,
		ToMemberID:          req.ToMemberID,
		Amount:              money.Amount(),
		GatewayPreferenceID: &pref.ID,
		Status:              types.PaymentStatusCreated,
	}
	if _, err := pm.paymentStore.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, istore.ErrDuplicateEdge) {
			return nil, apperrors.NewConflictError(
				"payment already in progress",
				"a payment for this transfer already exists",
			)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	log.Infow("Payment preference created",
		"paymentId", paymentID, "groupId", req.GroupID, "preferenceId", pref.ID)

	return &types.CreatePreferenceResponse{
		PaymentID: paymentID,
		InitPoint: pref.InitPoint,
	}, nil
}

// clearEdge enforces the one-active-payment-per-edge rule. A non-terminal
// payment younger than the pending TTL blocks the edge; an older one is
// assumed abandoned and marked superseded so the payer can retry.
func (pm *PaymentModel) clearEdge(ctx context.Context, groupID, fromMemberID, toMemberID string) error {
	active, err := pm.paymentStore.GetActivePaymentForEdge(ctx, groupID, fromMemberID, toMemberID)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil
		}
		return apperrors.NewDatabaseError(err)
	}

	if time.Since(active.CreatedAt) < pm.pendingTTL {
		return apperrors.NewConflictError(
			"payment already in progress",
			"a payment for this transfer is already "+string(active.Status),
		)
	}

	if err := pm.paymentStore.UpdatePaymentStatus(ctx, active.ID, types.PaymentStatusSuperseded, nil); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	logger.GetLogger().Infow("Superseded stale payment",
		"paymentId", active.ID, "groupId", groupID, "age", time.Since(active.CreatedAt))
	return nil
}

// GetPaymentStatus returns the stored payment, refreshing a non-terminal
// status from the gateway first. Gateway failures during the refresh are
// logged and swallowed: the stored state is still a correct answer, just
// possibly behind the webhook.
func (pm *PaymentModel) GetPaymentStatus(ctx context.Context, ownerID string, paymentID string) (*types.Payment, error) {
	payment, err := pm.paymentStore.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Payment", paymentID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	if _, err := pm.groupModel.GetGroup(ctx, ownerID, payment.GroupID); err != nil {
		return nil, err
	}

	if payment.Status.IsTerminal() {
		return payment, nil
	}

	refreshed, err := pm.refreshFromGateway(ctx, payment)
	if err != nil {
		logger.GetLogger().Warnw("Payment status refresh failed, returning stored status",
			"paymentId", paymentID, "error", err)
		return payment, nil
	}
	return refreshed, nil
}

func (pm *PaymentModel) refreshFromGateway(ctx context.Context, payment *types.Payment) (*types.Payment, error) {
	results, err := pm.gateway.SearchPaymentsByReference(ctx, externalReferencePrefix+payment.ID)
	if err != nil {
		gatewayCalls.WithLabelValues("search_payments", "error").Inc()
		return nil, err
	}
	gatewayCalls.WithLabelValues("search_payments", "ok").Inc()

	if len(results) == 0 {
		return payment, nil
	}

	latest := results[0]
	target := mapGatewayStatus(latest.Status)
	if target == payment.Status {
		return payment, nil
	}

	gatewayPaymentID := strconv.FormatInt(latest.ID, 10)
	if err := pm.paymentStore.UpdatePaymentStatus(ctx, payment.ID, target, &gatewayPaymentID); err != nil {
		return nil, err
	}

	payment.Status = target
	payment.GatewayPaymentID = &gatewayPaymentID
	return payment, nil
}

// ListGroupPayments lists every payment recorded for the group, newest first.
func (pm *PaymentModel) ListGroupPayments(ctx context.Context, ownerID string, groupID string) ([]types.Payment, error) {
	if _, err := pm.groupModel.GetGroup(ctx, ownerID, groupID); err != nil {
		return nil, err
	}

	payments, err := pm.paymentStore.ListGroupPayments(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return payments, nil
}

// HandleWebhook processes a gateway payment notification. The gateway is the
// source of truth: the payment is re-fetched by id rather than trusting the
// notification body. Unknown references and replays of terminal payments are
// ignored, so redelivery is harmless.
func (pm *PaymentModel) HandleWebhook(ctx context.Context, gatewayPaymentID string) error {
	log := logger.GetLogger()

	info, err := pm.gateway.GetPayment(ctx, gatewayPaymentID)
	if err != nil {
		gatewayCalls.WithLabelValues("get_payment", "error").Inc()
		return apperrors.NewExternalServiceError("Mercado Pago", err)
	}
	gatewayCalls.WithLabelValues("get_payment", "ok").Inc()

	paymentID, ok := strings.CutPrefix(info.ExternalReference, externalReferencePrefix)
	if !ok || paymentID == "" {
		log.Warnw("Webhook for foreign external reference ignored",
			"gatewayPaymentId", gatewayPaymentID, "externalReference", info.ExternalReference)
		return nil
	}

	payment, err := pm.paymentStore.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			log.Warnw("Webhook for unknown payment ignored",
				"gatewayPaymentId", gatewayPaymentID, "paymentId", paymentID)
			return nil
		}
		return apperrors.NewDatabaseError(err)
	}

	if payment.Status.IsTerminal() {
		return nil
	}

	target := mapGatewayStatus(info.Status)
	if target == payment.Status {
		return nil
	}

	if err := pm.paymentStore.UpdatePaymentStatus(ctx, paymentID, target, &gatewayPaymentID); err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil
		}
		return apperrors.NewDatabaseError(err)
	}

	log.Infow("Payment status updated from webhook",
		"paymentId", paymentID, "from", payment.Status, "to", target)
	return nil
}

// mapGatewayStatus folds the gateway's status vocabulary into ours. Anything
// not clearly final counts as pending; the next webhook settles it.
func mapGatewayStatus(gatewayStatus string) types.PaymentStatus {
	switch gatewayStatus {
	case "approved":
		return types.PaymentStatusApproved
	case "rejected", "cancelled", "refunded", "charged_back":
		return types.PaymentStatusRejected
	default:
		return types.PaymentStatusPending
	}
}
