package types

import "time"

// SplitGroup is a closed set of members sharing expenses. Closing a group
// (IsActive false) makes it read-only but balances stay computable.
type SplitGroup struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	CreatorID   string             `json:"creatorId"`
	IsActive    bool               `json:"isActive"`
	CreatedAt   time.Time          `json:"createdAt"`
	Members     []SplitGroupMember `json:"members,omitempty"`
}

// SplitGroupMember is a participant in a group. Exactly one member per group
// carries IsCreator; it is created atomically with the group. ContactID is
// nil for the creator member (the owner pays out of their own profile).
type SplitGroupMember struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"groupId"`
	ContactID   *string   `json:"contactId,omitempty"`
	IsCreator   bool      `json:"isCreator"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	Contact     *Contact  `json:"contact,omitempty"`
}

// Contact is an external identity a member may be backed by, carrying the
// payout coordinates used by the reconciler.
type Contact struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	BankAlias *string   `json:"bankAlias,omitempty"`
	CVU       *string   `json:"cvu,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name             string   `json:"name" binding:"required"`
	Description      string   `json:"description"`
	MemberContactIDs []string `json:"memberContactIds"`
}

type UpdateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type AddMemberRequest struct {
	ContactID string `json:"contactId" binding:"required"`
}

// QuickAddMemberRequest creates a freestanding contact and adds it to the
// group in one step.
type QuickAddMemberRequest struct {
	Name      string  `json:"name" binding:"required"`
	BankAlias *string `json:"bankAlias"`
	CVU       *string `json:"cvu"`
}
