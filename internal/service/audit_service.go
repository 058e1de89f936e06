package service

import (
	"context"
	"encoding/json"
	"fmt"

	"wms/internal/model"
	"wms/internal/repository"
	"wms/internal/token"
)

type AuditService interface {
	List(ctx context.Context, page, limit int) (model.Page[model.AuditLog], error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// List returns audit entries newest first.
func (s *auditService) List(ctx context.Context, page, limit int) (model.Page[model.AuditLog], error) {
	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return model.Page[model.AuditLog]{}, fmt.Errorf("list audit logs: %w", err)
	}
	return model.Page[model.AuditLog]{Items: logs, Total: total, Page: page, Limit: limit}, nil
}

// record writes one audit row. Call it with the transaction context of the mutation.
func record(ctx context.Context, repo repository.AuditRepository, actor token.Identity, action, entity string, id int64, details any) error {
	payload := "{}"
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		payload = string(b)
	}
	entry := &model.AuditLog{
		ActorID:    actor.SubjectID,
		ActorName:  actor.Username,
		Action:     action,
		EntityType: entity,
		EntityID:   id,
		Details:    payload,
	}
	if err := repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
