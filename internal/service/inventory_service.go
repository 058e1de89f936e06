package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"wms/internal/logger"
	"wms/internal/model"
	"wms/internal/repository"
	"wms/internal/token"
)

// InventoryPublisher fans inventory changes out to watchers.
type InventoryPublisher interface {
	Publish(ev model.InventoryEvent)
}

// InventoryService manages per-item stock. Totals are always recomputed from
// the location counts and every committed change is published.
type InventoryService interface {
	Create(ctx context.Context, actor token.Identity, in model.Inventory) (*model.Inventory, error)
	Get(ctx context.Context, id int64) (*model.Inventory, error)
	List(ctx context.Context, page, limit int) (model.Page[model.Inventory], error)
	Update(ctx context.Context, actor token.Identity, id int64, in model.Inventory) (*model.Inventory, error)
	Delete(ctx context.Context, actor token.Identity, id int64) error
}

type inventoryService struct {
	repo      repository.InventoryRepository
	items     repository.ItemRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       InventoryPublisher
}

func NewInventoryService(
	repo repository.InventoryRepository,
	items repository.ItemRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub InventoryPublisher,
) InventoryService {
	return &inventoryService{
		repo:      repo,
		items:     items,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
	}
}

func (s *inventoryService) publish(ctx context.Context, event string, inv model.Inventory) {
	if s.hub == nil {
		return
	}
	inv.Item = nil
	s.hub.Publish(model.InventoryEvent{Event: event, Data: inv})
	logger.From(ctx).Debug("inventory event published", zap.String("event", event), zap.Int64("inventory_id", inv.ID))
}

func validateLocations(inv *model.Inventory) error {
	seen := make(map[string]bool, len(inv.Locations))
	for _, l := range inv.Locations {
		if l.Count < 0 {
			return invalid("area %q has a negative count", l.Area)
		}
		if seen[l.Area] {
			return invalid("area %q listed twice", l.Area)
		}
		seen[l.Area] = true
	}
	return nil
}

func (s *inventoryService) Create(ctx context.Context, actor token.Identity, in model.Inventory) (*model.Inventory, error) {
	inv := in
	inv.ID = 0
	inv.Item = nil
	if err := validateLocations(&inv); err != nil {
		return nil, err
	}
	inv.SumLocations()

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ok, err := s.items.Exists(txCtx, inv.ItemID)
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if !ok {
			return invalid("item %d does not exist", inv.ItemID)
		}
		if _, err := s.repo.FindByItemID(txCtx, inv.ItemID); err == nil {
			return fmt.Errorf("inventory for item %d %w", inv.ItemID, ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}
		if err := s.repo.Create(txCtx, &inv); err != nil {
			return translate(err, "inventory")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionCreateInventory, "inventory", inv.ID, map[string]any{
			"itemId": inv.ItemID, "total": inv.TotalCount, "locations": inv.Locations,
		})
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, model.EventInventoryCreated, inv)
	return &inv, nil
}

func (s *inventoryService) Get(ctx context.Context, id int64) (*model.Inventory, error) {
	inv, err := s.repo.FindByID(ctx, id)
	return inv, translate(err, "inventory")
}

func (s *inventoryService) List(ctx context.Context, page, limit int) (model.Page[model.Inventory], error) {
	invs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return model.Page[model.Inventory]{}, fmt.Errorf("list inventory: %w", err)
	}
	return model.Page[model.Inventory]{Items: invs, Total: total, Page: page, Limit: limit}, nil
}

// Update replaces the location breakdown. The item an inventory row tracks cannot change.
func (s *inventoryService) Update(ctx context.Context, actor token.Identity, id int64, in model.Inventory) (*model.Inventory, error) {
	if in.ID != 0 && in.ID != id {
		return nil, invalid("body id %d does not match path id %d", in.ID, id)
	}
	if err := validateLocations(&in); err != nil {
		return nil, err
	}

	var inv *model.Inventory
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if inv, err = s.repo.FindByID(txCtx, id); err != nil {
			return translate(err, "inventory")
		}
		if in.ItemID != 0 && in.ItemID != inv.ItemID {
			return invalid("inventory %d tracks item %d, not %d", id, inv.ItemID, in.ItemID)
		}
		inv.Item = nil
		inv.Locations = in.Locations
		inv.SumLocations()
		if err := s.repo.Update(txCtx, inv); err != nil {
			return translate(err, "inventory")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionUpdateInventory, "inventory", inv.ID, map[string]any{
			"itemId": inv.ItemID, "total": inv.TotalCount, "locations": inv.Locations,
		})
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, model.EventInventoryUpdated, *inv)
	return inv, nil
}

func (s *inventoryService) Delete(ctx context.Context, actor token.Identity, id int64) error {
	var inv *model.Inventory
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if inv, err = s.repo.FindByID(txCtx, id); err != nil {
			return translate(err, "inventory")
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return translate(err, "inventory")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionDeleteInventory, "inventory", id, map[string]any{"itemId": inv.ItemID})
	})
	if err != nil {
		return err
	}
	s.publish(ctx, model.EventInventoryDeleted, *inv)
	return nil
}
