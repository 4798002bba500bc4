package handlers

import (
	"net/http"

	"github.com/CuentaClara/cuenta-clara-backend/middleware"
	"github.com/CuentaClara/cuenta-clara-backend/models"
	"github.com/gin-gonic/gin"
)

// SettlementHandler exposes the group balance summary.
type SettlementHandler struct {
	settlementModel *models.SettlementModel
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementModel *models.SettlementModel) *SettlementHandler {
	return &SettlementHandler{settlementModel: settlementModel}
}

// GetGroupBalancesHandler returns per-member net balances, the simplified
// transfer plan and payment state, recomputed from the current snapshot.
func (h *SettlementHandler) GetGroupBalancesHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")

	summary, err := h.settlementModel.GetGroupBalanceSummary(c.Request.Context(), userID, groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
