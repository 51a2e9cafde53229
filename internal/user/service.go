package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	jwttoken "bagofholding/internal/jwt"
	"bagofholding/internal/platform/metrics"
	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
	"bagofholding/pkg/email"
	"bagofholding/pkg/platform/sentinel"
	"bagofholding/pkg/requestcontext"
	"bagofholding/pkg/secrets"
)

const minPasswordLength = 8

// Service owns registration, login, and account lookup.
type Service struct {
	store          Store
	tokens         *jwttoken.Service
	accessTokenTTL time.Duration
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

func NewService(store Store, tokens *jwttoken.Service, accessTokenTTL time.Duration, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:          store,
		tokens:         tokens,
		accessTokenTTL: accessTokenTTL,
		metrics:        m,
		logger:         logger,
	}
}

// Register creates an account. The email is normalized before the uniqueness
// check so two spellings of the same address cannot both register.
func (s *Service) Register(ctx context.Context, rawEmail, password, displayName string) (*User, error) {
	addr := email.Normalize(rawEmail)
	if !email.Valid(addr) {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if displayName == "" {
		displayName = email.DeriveDisplayName(addr)
	}

	hash, err := secrets.Hash(password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	account := &User{
		ID:           id.NewUserID(),
		Email:        addr,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.metrics.IncrementUsersRegistered()
	s.logger.InfoContext(ctx, "user registered", "user_id", account.ID.String())
	return account, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password return the same error so login cannot probe for accounts.
func (s *Service) Login(ctx context.Context, rawEmail, password string) (string, *User, error) {
	account, err := s.store.FindByEmail(ctx, email.Normalize(rawEmail))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if err := secrets.Verify(password, account.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	token, err := s.tokens.GenerateAccessToken(account.ID, s.accessTokenTTL)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", account.ID.String())
	return token, account, nil
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*User, error) {
	account, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	return account, nil
}
