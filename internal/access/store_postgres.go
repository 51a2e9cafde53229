package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	id "bagofholding/pkg/domain"
	"bagofholding/pkg/platform/sentinel"
)

// PostgresStore persists grants in the access_grants table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, grant *Grant) error {
	query := `
		INSERT INTO access_grants (bag_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := s.db.ExecContext(ctx, query,
		grant.BagID.String(), grant.UserID.String(), grant.Role.String(), grant.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("grant already exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, bagID id.BagID, userID id.UserID) (*Grant, error) {
	query := `
		SELECT bag_id, user_id, role, created_at
		FROM access_grants
		WHERE bag_id = $1 AND user_id = $2`
	grant, err := scanGrant(s.db.QueryRowContext(ctx, query, bagID.String(), userID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("grant not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("select grant: %w", err)
	}
	return grant, nil
}

func (s *PostgresStore) ListByBag(ctx context.Context, bagID id.BagID) ([]*Grant, error) {
	query := `
		SELECT bag_id, user_id, role, created_at
		FROM access_grants
		WHERE bag_id = $1
		ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, bagID.String())
	if err != nil {
		return nil, fmt.Errorf("select grants by bag: %w", err)
	}
	defer rows.Close()
	return collectGrants(rows)
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*Grant, error) {
	query := `
		SELECT bag_id, user_id, role, created_at
		FROM access_grants
		WHERE user_id = $1
		ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("select grants by user: %w", err)
	}
	defer rows.Close()
	return collectGrants(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, bagID id.BagID, userID id.UserID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM access_grants WHERE bag_id = $1 AND user_id = $2`,
		bagID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete grant rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("grant not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrant(row rowScanner) (*Grant, error) {
	var (
		grant         Grant
		bagID, userID string
		roleLabel     string
	)
	if err := row.Scan(&bagID, &userID, &roleLabel, &grant.CreatedAt); err != nil {
		return nil, err
	}
	parsedBag, err := id.ParseBagID(bagID)
	if err != nil {
		return nil, err
	}
	parsedUser, err := id.ParseUserID(userID)
	if err != nil {
		return nil, err
	}
	role, err := ParseRole(roleLabel)
	if err != nil {
		return nil, err
	}
	grant.BagID = parsedBag
	grant.UserID = parsedUser
	grant.Role = role
	return &grant, nil
}

func collectGrants(rows *sql.Rows) ([]*Grant, error) {
	var grants []*Grant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}
	return grants, nil
}
