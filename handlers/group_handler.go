// Package handlers wires HTTP requests to the models layer. Handlers bind
// and authorize; business rules live in models.
package handlers

import (
	"net/http"

	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	"github.com/CuentaClara/cuenta-clara-backend/middleware"
	"github.com/CuentaClara/cuenta-clara-backend/models"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/gin-gonic/gin"
)

// GroupHandler handles split-group and membership requests.
type GroupHandler struct {
	groupModel *models.GroupModel
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupModel *models.GroupModel) *GroupHandler {
	return &GroupHandler{groupModel: groupModel}
}

func (h *GroupHandler) CreateGroupHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	userName := c.GetString(middleware.UserNameKey)
	if userName == "" {
		userName = "Me"
	}

	var req types.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	group, err := h.groupModel.CreateGroup(c.Request.Context(), userID, userName, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) ListGroupsHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	groups, err := h.groupModel.ListGroups(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if groups == nil {
		groups = []types.SplitGroup{}
	}

	c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) GetGroupHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")

	group, err := h.groupModel.GetGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) UpdateGroupHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")

	var req types.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	group, err := h.groupModel.UpdateGroup(c.Request.Context(), userID, groupID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// CloseGroupHandler soft-deletes the group: history stays readable.
func (h *GroupHandler) CloseGroupHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")

	if err := h.groupModel.CloseGroup(c.Request.Context(), userID, groupID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GroupHandler) AddMemberHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")

	var req types.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	member, err := h.groupModel.AddMember(c.Request.Context(), userID, groupID, req.ContactID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (h *GroupHandler) QuickAddMemberHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")

	var req types.QuickAddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	member, err := h.groupModel.QuickAddMember(c.Request.Context(), userID, groupID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (h *GroupHandler) RemoveMemberHandler(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	groupID := c.Param("id")
	memberID := c.Param("memberId")

	if err := h.groupModel.RemoveMember(c.Request.Context(), userID, groupID, memberID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
