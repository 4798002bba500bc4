package handlers

import (
	"net/http"

	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	"github.com/CuentaClara/cuenta-clara-backend/middleware"
	"github.com/CuentaClara/cuenta-clara-backend/models"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/gin-gonic/gin"
)

// ExpenseHandler handles shared-expense requests.
type ExpenseHandler struct {
	expenseModel *models.ExpenseModel
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseModel *models.ExpenseModel) *ExpenseHandler {
	return &ExpenseHandler{expenseModel: expenseModel}
}

func (h *ExpenseHandler) CreateExpenseHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")

	var req types.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	expense, err := h.expenseModel.CreateExpense(c.Request.Context(), userID, groupID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) ListExpensesHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")

	expenses, err := h.expenseModel.ListExpenses(c.Request.Context(), userID, groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if expenses == nil {
		expenses = []types.SplitExpense{}
	}

	c.JSON(http.StatusOK, expenses)
}

func (h *ExpenseHandler) GetExpenseHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")
	expenseID := c.Param("expenseId")

	expense, err := h.expenseModel.GetExpense(c.Request.Context(), userID, groupID, expenseID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) UpdateExpenseHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")
	expenseID := c.Param("expenseId")

	var req types.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	expense, err := h.expenseModel.UpdateExpense(c.Request.Context(), userID, groupID, expenseID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) DeleteExpenseHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")
	expenseID := c.Param("expenseId")

	if err := h.expenseModel.DeleteExpense(c.Request.Context(), userID, groupID, expenseID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
