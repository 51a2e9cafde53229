package bag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "bagofholding/pkg/domain"
	"bagofholding/pkg/platform/sentinel"
)

// PostgresStore persists bags in the bags table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, bag *Bag) error {
	query := `
		INSERT INTO bags (id, name, description, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, query,
		bag.ID.String(), bag.Name, bag.Description, bag.OwnerID.String(), bag.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bag: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, bagID id.BagID) (*Bag, error) {
	query := `
		SELECT id, name, description, owner_id, created_at
		FROM bags
		WHERE id = $1`
	bag, err := scanBag(s.db.QueryRowContext(ctx, query, bagID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bag not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("select bag: %w", err)
	}
	return bag, nil
}

func (s *PostgresStore) FindMany(ctx context.Context, bagIDs []id.BagID) ([]*Bag, error) {
	if len(bagIDs) == 0 {
		return nil, nil
	}
	raw := make([]string, len(bagIDs))
	for i, bagID := range bagIDs {
		raw[i] = bagID.String()
	}
	query := `
		SELECT id, name, description, owner_id, created_at
		FROM bags
		WHERE id = ANY($1)
		ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, raw)
	if err != nil {
		return nil, fmt.Errorf("select bags: %w", err)
	}
	defer rows.Close()

	var bags []*Bag
	for rows.Next() {
		bag, err := scanBag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bag: %w", err)
		}
		bags = append(bags, bag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bags: %w", err)
	}
	return bags, nil
}

func (s *PostgresStore) Delete(ctx context.Context, bagID id.BagID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bags WHERE id = $1`, bagID.String())
	if err != nil {
		return fmt.Errorf("delete bag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bag rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bag not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBag(row rowScanner) (*Bag, error) {
	var (
		bag            Bag
		rawID, ownerID string
	)
	if err := row.Scan(&rawID, &bag.Name, &bag.Description, &ownerID, &bag.CreatedAt); err != nil {
		return nil, err
	}
	bagID, err := id.ParseBagID(rawID)
	if err != nil {
		return nil, err
	}
	owner, err := id.ParseUserID(ownerID)
	if err != nil {
		return nil, err
	}
	bag.ID = bagID
	bag.OwnerID = owner
	return &bag, nil
}
