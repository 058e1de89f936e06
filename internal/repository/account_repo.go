package repository

import (
	"context"

	"gorm.io/gorm"

	"wms/internal/model"
)

// AccountRepository defines the interface for data access of Account entities
type AccountRepository interface {
	CRUD[model.Account]
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
}

type accountRepository struct {
	crudRepository[model.Account]
}

// NewAccountRepository returns a new instance of AccountRepository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{newCRUD[model.Account](db, "id asc")}
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	var account model.Account
	if err := Conn(ctx, r.db).First(&account, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &account, nil
}
