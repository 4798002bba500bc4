package postgres

import (
	"context"
	"fmt"

	istore "github.com/CuentaClara/cuenta-clara-backend/internal/store"
	"github.com/CuentaClara/cuenta-clara-backend/types"
)

var _ istore.ContactStore = (*pgContactStore)(nil)

type pgContactStore struct {
	db DB
}

// NewContactStore creates a new PostgreSQL contact store.
func NewContactStore(db DB) istore.ContactStore {
	return &pgContactStore{db: db}
}

func (s *pgContactStore) CreateContact(ctx context.Context, contact *types.Contact) (string, error) {
	var contactID string
	err := s.db.QueryRow(ctx, `
        INSERT INTO contacts (owner_id, name, bank_alias, cvu)
        VALUES ($1, $2, $3, $4)
        RETURNING id`,
		contact.OwnerID,
		contact.Name,
		contact.BankAlias,
		contact.CVU,
	).Scan(&contactID)
	if err != nil {
		return "", fmt.Errorf("failed to create contact: %w", err)
	}
	return contactID, nil
}

// GetContactsByIDs returns the owner's contacts matching ids. Callers compare
// the result length against the request to detect foreign or unknown ids.
func (s *pgContactStore) GetContactsByIDs(ctx context.Context, ownerID string, ids []string) ([]types.Contact, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.Query(ctx, `
        SELECT id, owner_id, name, bank_alias, cvu, created_at
        FROM contacts
        WHERE owner_id = $1 AND id = ANY($2)
        ORDER BY name, id`,
		ownerID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []types.Contact
	for rows.Next() {
		var c types.Contact
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.BankAlias, &c.CVU, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading contact rows: %w", err)
	}
	return contacts, nil
}
