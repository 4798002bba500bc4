package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	"github.com/CuentaClara/cuenta-clara-backend/logger"
	"github.com/CuentaClara/cuenta-clara-backend/middleware"
	"github.com/CuentaClara/cuenta-clara-backend/models"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles checkout creation, payment status reads and the
// gateway webhook.
type PaymentHandler struct {
	paymentModel  *models.PaymentModel
	webhookSecret string
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentModel *models.PaymentModel, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		paymentModel:  paymentModel,
		webhookSecret: webhookSecret,
	}
}

func (h *PaymentHandler) CreatePreferenceHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var req types.CreatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	resp, err := h.paymentModel.CreatePreference(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PaymentHandler) GetPaymentStatusHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	paymentID := c.Param("id")

	payment, err := h.paymentModel.GetPaymentStatus(c.Request.Context(), userID, paymentID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) ListGroupPaymentsHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")

	payments, err := h.paymentModel.ListGroupPayments(c.Request.Context(), userID, groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if payments == nil {
		payments = []types.Payment{}
	}

	c.JSON(http.StatusOK, payments)
}

// WebhookHandler receives gateway payment notifications. Unauthenticated
// route: the x-signature HMAC is the only trust anchor. Non-payment topics
// and malformed notifications are acknowledged with 200 so the gateway does
// not retry them; processing failures return 500 so it does.
func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	log := logger.GetLogger()

	topic := c.Query("type")
	if topic == "" {
		topic = c.Query("topic")
	}
	dataID := c.Query("data.id")
	if dataID == "" {
		dataID = c.Query("id")
	}

	if topic != "payment" || dataID == "" {
		log.Debugw("Ignoring non-payment webhook", "topic", topic, "dataId", dataID)
		c.Status(http.StatusOK)
		return
	}

	if h.webhookSecret != "" {
		if err := verifyWebhookSignature(c, h.webhookSecret, dataID); err != nil {
			log.Warnw("Webhook signature rejected", "dataId", dataID, "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}

	if err := h.paymentModel.HandleWebhook(c.Request.Context(), dataID); err != nil {
		log.Errorw("Webhook processing failed", "dataId", dataID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}

	c.Status(http.StatusOK)
}

// verifyWebhookSignature checks the Mercado Pago x-signature header. The
// signed manifest is `id:{data.id};request-id:{x-request-id};ts:{ts};` and
// the signature is its hex-encoded HMAC-SHA256 under the webhook secret.
func verifyWebhookSignature(c *gin.Context, secret string, dataID string) error {
	signature := c.GetHeader("x-signature")
	if signature == "" {
		return fmt.Errorf("missing x-signature header")
	}
	requestID := c.GetHeader("x-request-id")

	var ts, v1 string
	for _, part := range strings.Split(signature, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	if ts == "" || v1 == "" {
		return fmt.Errorf("malformed x-signature header")
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
