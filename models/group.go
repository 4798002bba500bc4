// Package models implements the business logic layer between HTTP handlers
// and the stores.
package models

import (
	"context"
	"errors"

	apperrors "github.com/CuentaClara/cuenta-clara-backend/errors"
	istore "github.com/CuentaClara/cuenta-clara-backend/internal/store"
	"github.com/CuentaClara/cuenta-clara-backend/logger"
	"github.com/CuentaClara/cuenta-clara-backend/types"
)

// GroupModel owns split-group lifecycle and membership rules.
type GroupModel struct {
	groupStore   istore.GroupStore
	contactStore istore.ContactStore
}

// NewGroupModel creates a new GroupModel.
func NewGroupModel(groupStore istore.GroupStore, contactStore istore.ContactStore) *GroupModel {
	return &GroupModel{
		groupStore:   groupStore,
		contactStore: contactStore,
	}
}

// CreateGroup creates a group with its creator member and one member per
// provided contact, atomically.
func (gm *GroupModel) CreateGroup(ctx context.Context, ownerID string, ownerName string, req *types.CreateGroupRequest) (*types.SplitGroup, error) {
	log := logger.GetLogger()

	contacts, err := gm.contactStore.GetContactsByIDs(ctx, ownerID, req.MemberContactIDs)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if len(contacts) != len(req.MemberContactIDs) {
		return nil, apperrors.ValidationFailed(
			"invalid contacts",
			"one or more contacts do not exist or belong to another user",
		)
	}

	group := &types.SplitGroup{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   ownerID,
	}

	groupID, err := gm.groupStore.CreateGroup(ctx, group, ownerName, contacts)
	if err != nil {
		log.Errorw("Failed to create group", "ownerId", ownerID, "error", err)
		return nil, apperrors.NewDatabaseError(err)
	}

	return gm.GetGroup(ctx, ownerID, groupID)
}

func (gm *GroupModel) GetGroup(ctx context.Context, ownerID string, groupID string) (*types.SplitGroup, error) {
	group, err := gm.groupStore.GetGroup(ctx, groupID, ownerID)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.GroupNotFound(groupID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return group, nil
}

func (gm *GroupModel) ListGroups(ctx context.Context, ownerID string) ([]types.SplitGroup, error) {
	groups, err := gm.groupStore.ListGroups(ctx, ownerID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return groups, nil
}

func (gm *GroupModel) UpdateGroup(ctx context.Context, ownerID string, groupID string, req *types.UpdateGroupRequest) (*types.SplitGroup, error) {
	err := gm.groupStore.UpdateGroup(ctx, groupID, ownerID, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.GroupNotFound(groupID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return gm.GetGroup(ctx, ownerID, groupID)
}

// CloseGroup soft-deletes: the group becomes read-only but its balances stay
// computable.
func (gm *GroupModel) CloseGroup(ctx context.Context, ownerID string, groupID string) error {
	err := gm.groupStore.SetGroupActive(ctx, groupID, ownerID, false)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return apperrors.GroupNotFound(groupID)
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// AddMember adds an existing contact to an active group.
func (gm *GroupModel) AddMember(ctx context.Context, ownerID string, groupID string, contactID string) (*types.SplitGroupMember, error) {
	group, err := gm.requireActiveGroup(ctx, ownerID, groupID)
	if err != nil {
		return nil, err
	}

	contacts, err := gm.contactStore.GetContactsByIDs(ctx, ownerID, []string{contactID})
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if len(contacts) == 0 {
		return nil, apperrors.NotFound("Contact", contactID)
	}
	contact := contacts[0]

	for _, m := range group.Members {
		if m.ContactID != nil && *m.ContactID == contact.ID {
			return nil, apperrors.NewConflictError(
				"contact is already a member of the group",
				"contact: "+contact.ID,
			)
		}
	}

	member := &types.SplitGroupMember{
		GroupID:     groupID,
		ContactID:   &contact.ID,
		DisplayName: contact.Name,
	}
	memberID, err := gm.groupStore.AddMember(ctx, member)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	return gm.getMember(ctx, groupID, memberID)
}

// QuickAddMember creates a freestanding contact and adds it to the group in
// one step.
func (gm *GroupModel) QuickAddMember(ctx context.Context, ownerID string, groupID string, req *types.QuickAddMemberRequest) (*types.SplitGroupMember, error) {
	if _, err := gm.requireActiveGroup(ctx, ownerID, groupID); err != nil {
		return nil, err
	}

	contactID, err := gm.contactStore.CreateContact(ctx, &types.Contact{
		OwnerID:   ownerID,
		Name:      req.Name,
		BankAlias: req.BankAlias,
		CVU:       req.CVU,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	member := &types.SplitGroupMember{
		GroupID:     groupID,
		ContactID:   &contactID,
		DisplayName: req.Name,
	}
	memberID, err := gm.groupStore.AddMember(ctx, member)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	return gm.getMember(ctx, groupID, memberID)
}

// RemoveMember removes a member from an active group. The creator member is
// never removable, and neither is anyone with expense or payment history:
// their shares feed the balance computation and payment rows keep a FK on
// the member.
func (gm *GroupModel) RemoveMember(ctx context.Context, ownerID string, groupID string, memberID string) error {
	if _, err := gm.requireActiveGroup(ctx, ownerID, groupID); err != nil {
		return err
	}

	member, err := gm.getMember(ctx, groupID, memberID)
	if err != nil {
		return err
	}
	if member.IsCreator {
		return apperrors.ValidationFailed(
			"cannot remove creator",
			"the group creator cannot be removed",
		)
	}

	participations, err := gm.groupStore.CountMemberParticipations(ctx, memberID)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if participations > 0 {
		return apperrors.NewConflictError(
			"member has expense history",
			"the member participated in group expenses and cannot be removed",
		)
	}

	payments, err := gm.groupStore.CountMemberPayments(ctx, memberID)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if payments > 0 {
		return apperrors.NewConflictError(
			"member has payment history",
			"the member is referenced by payments and cannot be removed",
		)
	}

	if err := gm.groupStore.RemoveMember(ctx, groupID, memberID); err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return apperrors.NotFound("Member", memberID)
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

func (gm *GroupModel) requireActiveGroup(ctx context.Context, ownerID string, groupID string) (*types.SplitGroup, error) {
	group, err := gm.GetGroup(ctx, ownerID, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, apperrors.ValidationFailed(
			"group is closed",
			"closed groups are read-only",
		)
	}
	return group, nil
}

func (gm *GroupModel) getMember(ctx context.Context, groupID string, memberID string) (*types.SplitGroupMember, error) {
	member, err := gm.groupStore.GetMember(ctx, groupID, memberID)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Member", memberID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return member, nil
}
