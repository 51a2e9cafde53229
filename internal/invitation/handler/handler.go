// Package handler exposes invitation endpoints.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bagofholding/internal/invitation/models"
	"bagofholding/internal/platform/middleware"
	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
	"bagofholding/pkg/platform/httputil"
	"bagofholding/pkg/requestcontext"
)

// Service defines the invitation operations the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, bagID id.BagID, requesterID id.UserID, email string, ttl time.Duration) (*models.Invitation, error)
	Validate(ctx context.Context, token string) (*models.Invitation, error)
	Accept(ctx context.Context, token string, userID id.UserID) (*models.Invitation, error)
	List(ctx context.Context, bagID id.BagID, requesterID id.UserID) ([]*models.Invitation, error)
}

// BagNames resolves bag display names for the unauthenticated preview.
type BagNames interface {
	Name(ctx context.Context, bagID id.BagID) (string, error)
}

// Handler handles invitation endpoints.
type Handler struct {
	invitations Service
	bags        BagNames
	logger      *slog.Logger
}

func New(invitations Service, bags BagNames, logger *slog.Logger) *Handler {
	return &Handler{invitations: invitations, bags: bags, logger: logger}
}

// RegisterPublic registers the unauthenticated preview route.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/invitations/{token}", h.handleValidate)
}

// RegisterProtected registers routes that require a valid access token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/bags/{bagID}/invitations", h.handleCreate)
	r.Get("/bags/{bagID}/invitations", h.handleList)
	r.Post("/invitations/{token}/accept", h.handleAccept)
}

type createRequest struct {
	Email    string `json:"email"`
	TTLHours int    `json:"ttl_hours"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requesterID := requestcontext.UserID(ctx)

	bagID, err := id.ParseBagID(chi.URLParam(r, "bagID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req createRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}
	if req.TTLHours < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "ttl_hours cannot be negative"))
		return
	}

	invitation, err := h.invitations.Create(ctx, bagID, requesterID, req.Email, time.Duration(req.TTLHours)*time.Hour)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to create invitation")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, invitation)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requesterID := requestcontext.UserID(ctx)

	bagID, err := id.ParseBagID(chi.URLParam(r, "bagID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	invitations, err := h.invitations.List(ctx, bagID, requesterID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list invitations")
		return
	}
	if invitations == nil {
		invitations = []*models.Invitation{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"invitations": invitations})
}

// previewResponse deliberately omits the token: the caller already holds it,
// and the preview is unauthenticated.
type previewResponse struct {
	BagID     string    `json:"bag_id"`
	BagName   string    `json:"bag_name,omitempty"`
	InvitedBy string    `json:"invited_by"`
	Status    string    `json:"status"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invitation, err := h.invitations.Validate(ctx, chi.URLParam(r, "token"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to validate invitation")
		return
	}

	// Name resolution is best effort: an invitation can outlive its bag, and
	// the preview should still answer.
	bagName, err := h.bags.Name(ctx, invitation.BagID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to resolve bag name for preview",
			"bag_id", invitation.BagID.String(),
			"error", err.Error(),
		)
	}

	httputil.WriteJSON(w, http.StatusOK, previewResponse{
		BagID:     invitation.BagID.String(),
		BagName:   bagName,
		InvitedBy: invitation.InvitedBy.String(),
		Status:    string(invitation.Status),
		Email:     invitation.Email,
		ExpiresAt: invitation.ExpiresAt,
	})
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	invitation, err := h.invitations.Accept(ctx, chi.URLParam(r, "token"), userID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to accept invitation")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, invitation)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if dErrors.Is(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(r.Context(), msg,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
