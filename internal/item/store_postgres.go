package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "bagofholding/pkg/domain"
	"bagofholding/pkg/platform/sentinel"
)

// PostgresStore persists items in the items and item_history tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO items (id, bag_id, name, quantity, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, query,
		item.ID.String(), item.BagID.String(), item.Name, item.Quantity,
		item.Note, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, itemID id.ItemID) (*Item, error) {
	query := `
		SELECT id, bag_id, name, quantity, note, created_at, updated_at
		FROM items
		WHERE id = $1`
	item, err := scanItem(s.db.QueryRowContext(ctx, query, itemID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("select item: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) Update(ctx context.Context, item *Item) error {
	query := `
		UPDATE items
		SET name = $2, quantity = $3, note = $4, updated_at = $5
		WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query,
		item.ID.String(), item.Name, item.Quantity, item.Note, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return requireRow(result, "item")
}

func (s *PostgresStore) Delete(ctx context.Context, itemID id.ItemID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, itemID.String())
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireRow(result, "item")
}

func (s *PostgresStore) ListByBag(ctx context.Context, bagID id.BagID) ([]*Item, error) {
	query := `
		SELECT id, bag_id, name, quantity, note, created_at, updated_at
		FROM items
		WHERE bag_id = $1
		ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, bagID.String())
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) AppendHistory(ctx context.Context, record History) error {
	query := `
		INSERT INTO item_history (item_id, bag_id, action, delta, actor_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, query,
		record.ItemID.String(), record.BagID.String(), string(record.Action),
		record.Delta, record.ActorID.String(), record.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert item history: %w", err)
	}
	return nil
}

func (s *PostgresStore) HistoryForItem(ctx context.Context, itemID id.ItemID) ([]History, error) {
	query := `
		SELECT item_id, bag_id, action, delta, actor_id, occurred_at
		FROM item_history
		WHERE item_id = $1
		ORDER BY occurred_at DESC`
	rows, err := s.db.QueryContext(ctx, query, itemID.String())
	if err != nil {
		return nil, fmt.Errorf("select item history: %w", err)
	}
	defer rows.Close()

	var records []History
	for rows.Next() {
		var (
			record                 History
			rawItem, rawBag, actor string
			action                 string
		)
		if err := rows.Scan(&rawItem, &rawBag, &action, &record.Delta, &actor, &record.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan item history: %w", err)
		}
		itemID, err := id.ParseItemID(rawItem)
		if err != nil {
			return nil, err
		}
		bagID, err := id.ParseBagID(rawBag)
		if err != nil {
			return nil, err
		}
		actorID, err := id.ParseUserID(actor)
		if err != nil {
			return nil, err
		}
		record.ItemID = itemID
		record.BagID = bagID
		record.ActorID = actorID
		record.Action = HistoryAction(action)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item history: %w", err)
	}
	return records, nil
}

func requireRow(result sql.Result, entity string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s not found: %w", entity, sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item          Item
		rawID, rawBag string
	)
	if err := row.Scan(&rawID, &rawBag, &item.Name, &item.Quantity, &item.Note,
		&item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	itemID, err := id.ParseItemID(rawID)
	if err != nil {
		return nil, err
	}
	bagID, err := id.ParseBagID(rawBag)
	if err != nil {
		return nil, err
	}
	item.ID = itemID
	item.BagID = bagID
	return &item, nil
}
