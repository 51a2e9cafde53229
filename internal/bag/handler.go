package bag

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bagofholding/internal/platform/middleware"
	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
	"bagofholding/pkg/platform/httputil"
	"bagofholding/pkg/requestcontext"
)

// Handler handles bag endpoints. All routes require authentication.
type Handler struct {
	bags   *Service
	logger *slog.Logger
}

func NewHandler(bags *Service, logger *slog.Logger) *Handler {
	return &Handler{bags: bags, logger: logger}
}

// Register registers the bag routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/bags", h.handleCreate)
	r.Get("/bags", h.handleList)
	r.Get("/bags/{bagID}", h.handleGet)
	r.Get("/bags/{bagID}/members", h.handleMembers)
	r.Delete("/bags/{bagID}", h.handleDelete)
}

type createBagRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.UserID(ctx)

	var req createBagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.bags.Create(ctx, req.Name, req.Description, callerID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to create bag")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.UserID(ctx)

	bags, err := h.bags.ListForUser(ctx, callerID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list bags")
		return
	}
	if bags == nil {
		bags = []*Bag{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"bags": bags})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.UserID(ctx)

	bagID, err := id.ParseBagID(chi.URLParam(r, "bagID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	found, err := h.bags.Get(ctx, bagID, callerID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load bag")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) handleMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.UserID(ctx)

	bagID, err := id.ParseBagID(chi.URLParam(r, "bagID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	members, err := h.bags.Members(ctx, bagID, callerID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list members")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.UserID(ctx)

	bagID, err := id.ParseBagID(chi.URLParam(r, "bagID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.bags.Delete(ctx, bagID, callerID); err != nil {
		h.writeServiceError(w, r, err, "failed to delete bag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
