package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	istore "github.com/CuentaClara/cuenta-clara-backend/internal/store"
	"github.com/CuentaClara/cuenta-clara-backend/logger"
	"github.com/CuentaClara/cuenta-clara-backend/types"
	"github.com/jackc/pgx/v5"
)

// Ensure pgGroupStore implements istore.GroupStore.
var _ istore.GroupStore = (*pgGroupStore)(nil)

type pgGroupStore struct {
	db DB
}

// NewGroupStore creates a new PostgreSQL group store.
func NewGroupStore(db DB) istore.GroupStore {
	return &pgGroupStore{db: db}
}

// CreateGroup inserts the group and its full initial member set in one
// transaction. The creator member is always present; contact members are
// added in the order given.
func (s *pgGroupStore) CreateGroup(ctx context.Context, group *types.SplitGroup, creatorDisplayName string, contacts []types.Contact) (string, error) {
	log := logger.GetLogger()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackTx(ctx, tx)

	var groupID string
	err = tx.QueryRow(ctx, `
        INSERT INTO split_groups (name, description, creator_id)
        VALUES ($1, $2, $3)
        RETURNING id`,
		group.Name,
		group.Description,
		group.CreatorID,
	).Scan(&groupID)
	if err != nil {
		return "", fmt.Errorf("failed to insert group: %w", err)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO split_group_members (group_id, contact_id, is_creator, display_name)
        VALUES ($1, NULL, TRUE, $2)`,
		groupID,
		creatorDisplayName,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert creator member: %w", err)
	}

	for _, contact := range contacts {
		_, err = tx.Exec(ctx, `
            INSERT INTO split_group_members (group_id, contact_id, is_creator, display_name)
            VALUES ($1, $2, FALSE, $3)`,
			groupID,
			contact.ID,
			contact.Name,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert member for contact %s: %w", contact.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit group creation: %w", err)
	}

	log.Infow("Created split group", "groupId", groupID, "members", len(contacts)+1)
	return groupID, nil
}

func (s *pgGroupStore) GetGroup(ctx context.Context, id string, ownerID string) (*types.SplitGroup, error) {
	var group types.SplitGroup
	err := s.db.QueryRow(ctx, `
        SELECT id, name, description, creator_id, is_active, created_at
        FROM split_groups
        WHERE id = $1 AND creator_id = $2`,
		id, ownerID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatorID, &group.IsActive, &group.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, istore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get group %s: %w", id, err)
	}

	members, err := s.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	group.Members = members

	return &group, nil
}

func (s *pgGroupStore) ListGroups(ctx context.Context, ownerID string) ([]types.SplitGroup, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, description, creator_id, is_active, created_at
        FROM split_groups
        WHERE creator_id = $1
        ORDER BY is_active DESC, created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []types.SplitGroup
	for rows.Next() {
		var g types.SplitGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.IsActive, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading group rows: %w", err)
	}

	for i := range groups {
		members, err := s.ListMembers(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}

	return groups, nil
}

func (s *pgGroupStore) UpdateGroup(ctx context.Context, id string, ownerID string, name string, description string) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE split_groups SET name = $1, description = $2
        WHERE id = $3 AND creator_id = $4`,
		name, description, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return istore.ErrNotFound
	}
	return nil
}

func (s *pgGroupStore) SetGroupActive(ctx context.Context, id string, ownerID string, active bool) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE split_groups SET is_active = $1
        WHERE id = $2 AND creator_id = $3`,
		active, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to set group %s active=%t: %w", id, active, err)
	}
	if tag.RowsAffected() == 0 {
		return istore.ErrNotFound
	}
	return nil
}

func (s *pgGroupStore) AddMember(ctx context.Context, member *types.SplitGroupMember) (string, error) {
	var memberID string
	err := s.db.QueryRow(ctx, `
        INSERT INTO split_group_members (group_id, contact_id, is_creator, display_name)
        VALUES ($1, $2, $3, $4)
        RETURNING id`,
		member.GroupID,
		member.ContactID,
		member.IsCreator,
		member.DisplayName,
	).Scan(&memberID)
	if err != nil {
		return "", fmt.Errorf("failed to add member: %w", err)
	}
	return memberID, nil
}

func (s *pgGroupStore) GetMember(ctx context.Context, groupID string, memberID string) (*types.SplitGroupMember, error) {
	row := s.db.QueryRow(ctx, memberSelect+`
        WHERE m.id = $1 AND m.group_id = $2`,
		memberID, groupID,
	)
	member, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, istore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get member %s: %w", memberID, err)
	}
	return member, nil
}

func (s *pgGroupStore) ListMembers(ctx context.Context, groupID string) ([]types.SplitGroupMember, error) {
	rows, err := s.db.Query(ctx, memberSelect+`
        WHERE m.group_id = $1
        ORDER BY m.created_at, m.id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []types.SplitGroupMember
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading member rows: %w", err)
	}
	return members, nil
}

func (s *pgGroupStore) RemoveMember(ctx context.Context, groupID string, memberID string) error {
	tag, err := s.db.Exec(ctx, `
        DELETE FROM split_group_members
        WHERE id = $1 AND group_id = $2 AND NOT is_creator`,
		memberID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member %s: %w", memberID, err)
	}
	if tag.RowsAffected() == 0 {
		return istore.ErrNotFound
	}
	return nil
}

func (s *pgGroupStore) CountMemberParticipations(ctx context.Context, memberID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM split_expense_participants WHERE member_id = $1`,
		memberID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participations for member %s: %w", memberID, err)
	}
	return count, nil
}

func (s *pgGroupStore) CountMemberPayments(ctx context.Context, memberID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM payments WHERE from_member_id = $1 OR to_member_id = $1`,
		memberID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payments for member %s: %w", memberID, err)
	}
	return count, nil
}

const memberSelect = `
        SELECT m.id, m.group_id, m.contact_id, m.is_creator, m.display_name, m.created_at,
               c.id, c.owner_id, c.name, c.bank_alias, c.cvu, c.created_at
        FROM split_group_members m
        LEFT JOIN contacts c ON c.id = m.contact_id`

func scanMember(row pgx.Row) (*types.SplitGroupMember, error) {
	var (
		m              types.SplitGroupMember
		contactID      *string
		contactOwner   *string
		contactName    *string
		contactAlias   *string
		contactCVU     *string
		contactCreated *time.Time
	)
	err := row.Scan(
		&m.ID, &m.GroupID, &m.ContactID, &m.IsCreator, &m.DisplayName, &m.CreatedAt,
		&contactID, &contactOwner, &contactName, &contactAlias, &contactCVU, &contactCreated,
	)
	if err != nil {
		return nil, err
	}
	if contactID != nil {
		m.Contact = &types.Contact{
			ID:        *contactID,
			OwnerID:   *contactOwner,
			Name:      *contactName,
			BankAlias: contactAlias,
			CVU:       contactCVU,
		}
		if contactCreated != nil {
			m.Contact.CreatedAt = *contactCreated
		}
	}
	return &m, nil
}
