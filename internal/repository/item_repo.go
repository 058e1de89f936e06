package repository

import (
	"context"

	"gorm.io/gorm"

	"wms/internal/model"
)

type ItemRepository interface {
	CRUD[model.Item]
	Exists(ctx context.Context, id int64) (bool, error)
}

type itemRepository struct {
	crudRepository[model.Item]
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{newCRUD[model.Item](db, "name asc")}
}

func (r *itemRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := Conn(ctx, r.db).Model(&model.Item{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

type BoxRepository interface {
	CRUD[model.Box]
}

func NewBoxRepository(db *gorm.DB) BoxRepository {
	return newCRUD[model.Box](db, "id asc", "Item")
}
