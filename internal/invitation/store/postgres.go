package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"bagofholding/internal/invitation/models"
	id "bagofholding/pkg/domain"
	"bagofholding/pkg/platform/sentinel"
)

// PostgresStore persists invitations in the invitations table. Transition
// relies on a conditional UPDATE so the database arbitrates concurrent
// acceptances.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const invitationColumns = `id, bag_id, token, email, invited_by, status, created_at, expires_at, accepted_by, accepted_at`

func (s *PostgresStore) Create(ctx context.Context, invitation *models.Invitation) error {
	query := `
		INSERT INTO invitations (id, bag_id, token, email, invited_by, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		invitation.ID.String(),
		invitation.BagID.String(),
		invitation.Token,
		nullableString(invitation.Email),
		invitation.InvitedBy.String(),
		string(invitation.Status),
		invitation.CreatedAt,
		invitation.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("token already exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	invitation, err := scanInvitation(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invitation not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("select invitation: %w", err)
	}
	return invitation, nil
}

func (s *PostgresStore) Transition(ctx context.Context, invitationID id.InvitationID, to models.Status, acceptedBy id.UserID, now time.Time) (*models.Invitation, error) {
	var (
		acceptedByArg any
		acceptedAtArg any
	)
	if to == models.StatusAccepted {
		acceptedByArg = acceptedBy.String()
		acceptedAtArg = now
	}

	query := `
		UPDATE invitations
		SET status = $2, accepted_by = $3, accepted_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + invitationColumns
	invitation, err := scanInvitation(s.db.QueryRowContext(ctx, query,
		invitationID.String(), string(to), acceptedByArg, acceptedAtArg))
	if err == nil {
		return invitation, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transition invitation: %w", err)
	}

	// No pending row matched: either the invitation is unknown or another
	// caller already moved it to a terminal status.
	var exists bool
	checkErr := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM invitations WHERE id = $1)`,
		invitationID.String()).Scan(&exists)
	if checkErr != nil {
		return nil, fmt.Errorf("check invitation existence: %w", checkErr)
	}
	if !exists {
		return nil, fmt.Errorf("invitation not found: %w", sentinel.ErrNotFound)
	}
	return nil, fmt.Errorf("invitation is already terminal: %w", sentinel.ErrInvalidState)
}

func (s *PostgresStore) ListByBag(ctx context.Context, bagID id.BagID) ([]*models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE bag_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, bagID.String())
	if err != nil {
		return nil, fmt.Errorf("select invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*models.Invitation
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invitations = append(invitations, invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return invitations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row rowScanner) (*models.Invitation, error) {
	var (
		invitation        models.Invitation
		rawID, rawBag     string
		rawInviter        string
		rawStatus         string
		email, acceptedBy sql.NullString
		acceptedAt        sql.NullTime
	)
	err := row.Scan(
		&rawID, &rawBag, &invitation.Token, &email, &rawInviter, &rawStatus,
		&invitation.CreatedAt, &invitation.ExpiresAt, &acceptedBy, &acceptedAt)
	if err != nil {
		return nil, err
	}

	invitationID, err := id.ParseInvitationID(rawID)
	if err != nil {
		return nil, err
	}
	bagID, err := id.ParseBagID(rawBag)
	if err != nil {
		return nil, err
	}
	inviterID, err := id.ParseUserID(rawInviter)
	if err != nil {
		return nil, err
	}
	status, err := models.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	invitation.ID = invitationID
	invitation.BagID = bagID
	invitation.InvitedBy = inviterID
	invitation.Status = status
	invitation.Email = email.String
	if acceptedBy.Valid {
		parsed, err := id.ParseUserID(acceptedBy.String)
		if err != nil {
			return nil, err
		}
		invitation.AcceptedBy = &parsed
	}
	if acceptedAt.Valid {
		at := acceptedAt.Time
		invitation.AcceptedAt = &at
	}
	return &invitation, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
