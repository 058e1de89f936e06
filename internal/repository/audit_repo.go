package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"wms/internal/model"
)

// ErrOutsideTx is returned when an audit row is written without the
// transaction of the mutation it describes.
var ErrOutsideTx = errors.New("audit entry written outside a transaction")

// AuditRepository is append-only.
type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	rows crudRepository[model.AuditLog]
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return auditRepository{rows: newCRUD[model.AuditLog](db, "created_at desc, id desc")}
}

// Log must run inside RunInTx so the entry commits or rolls back with its mutation.
func (r auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	if !InTx(ctx) {
		return ErrOutsideTx
	}
	return r.rows.Create(ctx, entry)
}

// List pages through entries newest first.
func (r auditRepository) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return r.rows.List(ctx, page, limit)
}
