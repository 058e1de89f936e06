package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wms/pkg/pagination"
)

// CRUD is the data access shared by every warehouse entity keyed by int64 id.
type CRUD[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, page, limit int) ([]T, int64, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id int64) error
}

type crudRepository[T any] struct {
	db       *gorm.DB
	preloads []string
	order    string
}

func newCRUD[T any](db *gorm.DB, order string, preloads ...string) crudRepository[T] {
	return crudRepository[T]{db: db, order: order, preloads: preloads}
}

func (r crudRepository[T]) query(ctx context.Context) *gorm.DB {
	q := Conn(ctx, r.db)
	for _, p := range r.preloads {
		q = q.Preload(p)
	}
	return q
}

func (r crudRepository[T]) Create(ctx context.Context, entity *T) error {
	return Conn(ctx, r.db).Create(entity).Error
}

func (r crudRepository[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var entity T
	if err := r.query(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r crudRepository[T]) List(ctx context.Context, page, limit int) ([]T, int64, error) {
	var items []T
	var total int64

	if err := Conn(ctx, r.db).Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	p := pagination.New(page, limit)
	if err := r.query(ctx).Order(r.order).Offset(p.Offset).Limit(p.Limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update saves every column, including zero values.
func (r crudRepository[T]) Update(ctx context.Context, entity *T) error {
	return Conn(ctx, r.db).Omit(clause.Associations).Save(entity).Error
}

func (r crudRepository[T]) Delete(ctx context.Context, id int64) error {
	res := Conn(ctx, r.db).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
