package service

import (
	"context"
	"fmt"

	"wms/internal/model"
	"wms/internal/repository"
	"wms/internal/token"
)

// ItemService manages the item catalogue.
type ItemService interface {
	Create(ctx context.Context, actor token.Identity, in model.Item) (*model.Item, error)
	Get(ctx context.Context, id int64) (*model.Item, error)
	List(ctx context.Context, page, limit int) (model.Page[model.Item], error)
	Update(ctx context.Context, actor token.Identity, id int64, in model.Item) (*model.Item, error)
	Delete(ctx context.Context, actor token.Identity, id int64) error
}

type itemService struct {
	repo      repository.ItemRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewItemService(repo repository.ItemRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) ItemService {
	return &itemService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func itemDetails(it *model.Item) map[string]any {
	return map[string]any{"upc": it.UPC, "name": it.Name, "weight": it.Weight.String()}
}

func (s *itemService) Create(ctx context.Context, actor token.Identity, in model.Item) (*model.Item, error) {
	if in.Weight.IsNegative() {
		return nil, invalid("weight must not be negative")
	}
	item := in
	item.ID = 0
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &item); err != nil {
			return translate(err, "item")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionCreateItem, "item", item.ID, itemDetails(&item))
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *itemService) Get(ctx context.Context, id int64) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	return item, translate(err, "item")
}

func (s *itemService) List(ctx context.Context, page, limit int) (model.Page[model.Item], error) {
	items, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return model.Page[model.Item]{}, fmt.Errorf("list items: %w", err)
	}
	return model.Page[model.Item]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *itemService) Update(ctx context.Context, actor token.Identity, id int64, in model.Item) (*model.Item, error) {
	if in.ID != 0 && in.ID != id {
		return nil, invalid("body id %d does not match path id %d", in.ID, id)
	}
	if in.Weight.IsNegative() {
		return nil, invalid("weight must not be negative")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "item")
	}
	item.UPC = in.UPC
	item.Name = in.Name
	item.Description = in.Description
	item.Weight = in.Weight
	if in.Image != nil {
		item.Image = in.Image
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, item); err != nil {
			return translate(err, "item")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionUpdateItem, "item", item.ID, itemDetails(item))
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) Delete(ctx context.Context, actor token.Identity, id int64) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return translate(err, "item")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionDeleteItem, "item", id, nil)
	})
}

// BoxService manages packaged quantities of catalogue items.
type BoxService interface {
	Create(ctx context.Context, actor token.Identity, in model.Box) (*model.Box, error)
	Get(ctx context.Context, id int64) (*model.Box, error)
	List(ctx context.Context, page, limit int) (model.Page[model.Box], error)
	Update(ctx context.Context, actor token.Identity, id int64, in model.Box) (*model.Box, error)
	Delete(ctx context.Context, actor token.Identity, id int64) error
}

type boxService struct {
	repo      repository.BoxRepository
	items     repository.ItemRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewBoxService(repo repository.BoxRepository, items repository.ItemRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) BoxService {
	return &boxService{repo: repo, items: items, auditRepo: auditRepo, txManager: txManager}
}

func (s *boxService) requireItem(ctx context.Context, itemID int64) error {
	ok, err := s.items.Exists(ctx, itemID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if !ok {
		return invalid("item %d does not exist", itemID)
	}
	return nil
}

func (s *boxService) Create(ctx context.Context, actor token.Identity, in model.Box) (*model.Box, error) {
	box := in
	box.ID = 0
	box.Item = nil
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireItem(txCtx, box.ItemID); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, &box); err != nil {
			return translate(err, "box")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionCreateBox, "box", box.ID, map[string]any{
			"upc": box.UPC, "itemId": box.ItemID, "count": box.Count,
		})
	})
	if err != nil {
		return nil, err
	}
	return &box, nil
}

func (s *boxService) Get(ctx context.Context, id int64) (*model.Box, error) {
	box, err := s.repo.FindByID(ctx, id)
	return box, translate(err, "box")
}

func (s *boxService) List(ctx context.Context, page, limit int) (model.Page[model.Box], error) {
	boxes, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return model.Page[model.Box]{}, fmt.Errorf("list boxes: %w", err)
	}
	return model.Page[model.Box]{Items: boxes, Total: total, Page: page, Limit: limit}, nil
}

func (s *boxService) Update(ctx context.Context, actor token.Identity, id int64, in model.Box) (*model.Box, error) {
	if in.ID != 0 && in.ID != id {
		return nil, invalid("body id %d does not match path id %d", in.ID, id)
	}
	box, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "box")
	}
	box.UPC = in.UPC
	box.ItemID = in.ItemID
	box.Item = nil
	box.Dimensions = in.Dimensions
	box.Count = in.Count

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireItem(txCtx, box.ItemID); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, box); err != nil {
			return translate(err, "box")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionUpdateBox, "box", box.ID, map[string]any{
			"upc": box.UPC, "itemId": box.ItemID, "count": box.Count,
		})
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

func (s *boxService) Delete(ctx context.Context, actor token.Identity, id int64) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return translate(err, "box")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionDeleteBox, "box", id, nil)
	})
}
