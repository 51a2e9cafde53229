package item

import (
	"context"
	"errors"
	"log/slog"

	"bagofholding/internal/access"
	"bagofholding/internal/notify"
	id "bagofholding/pkg/domain"
	dErrors "bagofholding/pkg/domain-errors"
	"bagofholding/pkg/platform/sentinel"
	"bagofholding/pkg/requestcontext"
)

// AccessManager is the slice of the access service items depend on.
type AccessManager interface {
	RequireRole(ctx context.Context, bagID id.BagID, userID id.UserID, min access.Role) (*access.Grant, error)
}

// Service owns item mutation and reads. Every mutation appends a history
// record and broadcasts to the bag's channel; both are best-effort relative
// to the item write itself having succeeded.
type Service struct {
	store  Store
	access AccessManager
	sink   notify.Sink
	logger *slog.Logger
}

func NewService(store Store, accessMgr AccessManager, sink notify.Sink, logger *slog.Logger) *Service {
	return &Service{store: store, access: accessMgr, sink: sink, logger: logger}
}

// Add creates an item in the bag. Any member may add.
func (s *Service) Add(ctx context.Context, bagID id.BagID, callerID id.UserID, name, note string, quantity int) (*Item, error) {
	if _, err := s.access.RequireRole(ctx, bagID, callerID, access.RoleMember); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	newItem, err := NewItem(bagID, name, note, quantity, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, newItem); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create item")
	}

	s.recordHistory(ctx, History{
		ItemID:     newItem.ID,
		BagID:      bagID,
		Action:     HistoryAdded,
		Delta:      quantity,
		ActorID:    callerID,
		OccurredAt: now,
	})
	s.sink.Broadcast(ctx, bagID, notify.Event{
		Type:       notify.EventItemAdded,
		BagID:      bagID,
		ActorID:    callerID,
		Subject:    newItem.ID.String(),
		Detail:     newItem.Name,
		OccurredAt: now,
	})
	return newItem, nil
}

// UpdateParams carries the fields Update may change. Nil means keep.
type UpdateParams struct {
	Name     *string
	Note     *string
	Quantity *int
}

// Update edits an item. Quantity must stay at or above zero.
func (s *Service) Update(ctx context.Context, itemID id.ItemID, callerID id.UserID, params UpdateParams) (*Item, error) {
	existing, err := s.findForMember(ctx, itemID, callerID)
	if err != nil {
		return nil, err
	}

	delta := 0
	if params.Quantity != nil {
		if *params.Quantity < 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "quantity cannot be negative")
		}
		delta = *params.Quantity - existing.Quantity
		existing.Quantity = *params.Quantity
	}
	if params.Name != nil {
		if *params.Name == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "item name cannot be empty")
		}
		existing.Name = *params.Name
	}
	if params.Note != nil {
		existing.Note = *params.Note
	}

	now := requestcontext.Now(ctx)
	existing.UpdatedAt = now
	if err := s.store.Update(ctx, existing); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "item not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update item")
	}

	s.recordHistory(ctx, History{
		ItemID:     existing.ID,
		BagID:      existing.BagID,
		Action:     HistoryUpdated,
		Delta:      delta,
		ActorID:    callerID,
		OccurredAt: now,
	})
	s.sink.Broadcast(ctx, existing.BagID, notify.Event{
		Type:       notify.EventItemUpdated,
		BagID:      existing.BagID,
		ActorID:    callerID,
		Subject:    existing.ID.String(),
		Detail:     existing.Name,
		OccurredAt: now,
	})
	return existing, nil
}

// Remove deletes an item. The history record survives the item row.
func (s *Service) Remove(ctx context.Context, itemID id.ItemID, callerID id.UserID) error {
	existing, err := s.findForMember(ctx, itemID, callerID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, itemID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "item not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete item")
	}

	now := requestcontext.Now(ctx)
	s.recordHistory(ctx, History{
		ItemID:     existing.ID,
		BagID:      existing.BagID,
		Action:     HistoryRemoved,
		Delta:      -existing.Quantity,
		ActorID:    callerID,
		OccurredAt: now,
	})
	s.sink.Broadcast(ctx, existing.BagID, notify.Event{
		Type:       notify.EventItemRemoved,
		BagID:      existing.BagID,
		ActorID:    callerID,
		Subject:    existing.ID.String(),
		Detail:     existing.Name,
		OccurredAt: now,
	})
	return nil
}

// List returns the bag's items, oldest first.
func (s *Service) List(ctx context.Context, bagID id.BagID, callerID id.UserID) ([]*Item, error) {
	if _, err := s.access.RequireRole(ctx, bagID, callerID, access.RoleMember); err != nil {
		return nil, err
	}
	items, err := s.store.ListByBag(ctx, bagID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	return items, nil
}

// History returns the item's change records, newest first.
func (s *Service) History(ctx context.Context, itemID id.ItemID, callerID id.UserID) ([]History, error) {
	if _, err := s.findForMember(ctx, itemID, callerID); err != nil {
		return nil, err
	}
	records, err := s.store.HistoryForItem(ctx, itemID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load item history")
	}
	return records, nil
}

// findForMember loads the item and checks the caller holds a role on its bag.
// The access check runs after the load because membership is per bag and the
// bag is only known from the item row.
func (s *Service) findForMember(ctx context.Context, itemID id.ItemID, callerID id.UserID) (*Item, error) {
	existing, err := s.store.Find(ctx, itemID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "item not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load item")
	}
	if _, err := s.access.RequireRole(ctx, existing.BagID, callerID, access.RoleMember); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) recordHistory(ctx context.Context, record History) {
	if err := s.store.AppendHistory(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "failed to append item history",
			"item_id", record.ItemID.String(),
			"error", err.Error(),
		)
	}
}
