package repository

import (
	"context"

	"gorm.io/gorm"

	"wms/internal/model"
)

type InventoryRepository interface {
	CRUD[model.Inventory]
	FindByItemID(ctx context.Context, itemID int64) (*model.Inventory, error)
}

type inventoryRepository struct {
	crudRepository[model.Inventory]
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{newCRUD[model.Inventory](db, "id asc", "Item")}
}

func (r *inventoryRepository) FindByItemID(ctx context.Context, itemID int64) (*model.Inventory, error) {
	var inv model.Inventory
	if err := r.query(ctx).First(&inv, "item_id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

type OrderRepository interface {
	CRUD[model.Order]
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return newCRUD[model.Order](db, "created_at desc")
}
