package item

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

// Handler handles item endpoints. All routes require authentication; per-bag
// membership is enforced in the service.
type Handler struct {
	items  *Service
	logger *slog.Logger
}

func NewHandler(items *Service, logger *slog.Logger) *Handler {
	return &Handler{items: items, logger: logger}
}

// Register registers the item routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/bags/{bagID}/items", h.handleAdd)
	r.Get("/bags/{bagID}/items", h.handleList)
	r.Patch("/items/{itemID}", h.handleUpdate)
	r.Delete("/items/{itemID}", h.handleRemove)
	r.Get("/items/{itemID}/history", h.handleHistory)
}

type addItemRequest struct {
	Name     string `json:"name"`
	Note     string `json:"note"`
	Quantity int    `json:"quantity"`
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.UserID(ctx)

	bagID, err := id.ParseBagID(chi.URLParam(r, "bagID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.items.Add(ctx, bagID, callerID, req.Name, req.Note, req.Quantity)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to add item")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.UserID(ctx)

	bagID, err := id.ParseBagID(chi.URLParam(r, "bagID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items, err := h.items.List(ctx, bagID, callerID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list items")
		return
	}
	if items == nil {
		items = []*Item{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type updateItemRequest struct {
	Name     *string `json:"name"`
	Note     *string `json:"note"`
	Quantity *int    `json:"quantity"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.UserID(ctx)

	itemID, err := id.ParseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.items.Update(ctx, itemID, callerID, UpdateParams{
		Name:     req.Name,
		Note:     req.Note,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update item")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.UserID(ctx)

	itemID, err := id.ParseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.items.Remove(ctx, itemID, callerID); err != nil {
		h.writeServiceError(w, r, err, "failed to remove item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID := requestcontext.UserID(ctx)

	itemID, err := id.ParseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.items.History(ctx, itemID, callerID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load item history")
		return
	}
	if records == nil {
		records = []History{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"history": records})
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
