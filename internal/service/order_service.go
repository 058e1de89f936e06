package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wms/internal/model"
	"wms/internal/repository"
	"wms/internal/token"
)

type OrderService interface {
	Create(ctx context.Context, actor token.Identity, in model.Order) (*model.Order, error)
	Get(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, page, limit int) (model.Page[model.Order], error)
	Update(ctx context.Context, actor token.Identity, id int64, in model.Order) (*model.Order, error)
	Delete(ctx context.Context, actor token.Identity, id int64) error
}

type orderService struct {
	repo      repository.OrderRepository
	items     repository.ItemRepository
	accounts  repository.AccountRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	now       func() time.Time
}

func NewOrderService(
	repo repository.OrderRepository,
	items repository.ItemRepository,
	accounts repository.AccountRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) OrderService {
	return &orderService{
		repo:      repo,
		items:     items,
		accounts:  accounts,
		auditRepo: auditRepo,
		txManager: txManager,
		now:       time.Now,
	}
}

// checkPayload verifies every line references an existing item exactly once.
func (s *orderService) checkPayload(ctx context.Context, o *model.Order) error {
	if strings.TrimSpace(o.Address) == "" {
		return invalid("address is required")
	}
	if len(o.Payload) == 0 {
		return invalid("order has no lines")
	}
	seen := make(map[int64]bool, len(o.Payload))
	for _, line := range o.Payload {
		if line.Count <= 0 {
			return invalid("item %d has non-positive count", line.ItemID)
		}
		if seen[line.ItemID] {
			return invalid("item %d listed twice", line.ItemID)
		}
		seen[line.ItemID] = true
		ok, err := s.items.Exists(ctx, line.ItemID)
		if err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if !ok {
			return invalid("item %d does not exist", line.ItemID)
		}
	}
	return nil
}

// Create places an order. Customers always order for themselves.
func (s *orderService) Create(ctx context.Context, actor token.Identity, in model.Order) (*model.Order, error) {
	order := in
	order.ID = 0
	if actor.Role == model.RoleCustomer {
		if order.CustomerID != 0 && order.CustomerID != actor.SubjectID {
			return nil, fmt.Errorf("%w: customers may only order for themselves", ErrForbidden)
		}
		order.CustomerID = actor.SubjectID
	}
	if order.TimeOrdered.IsZero() {
		order.TimeOrdered = s.now()
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.accounts.FindByID(txCtx, order.CustomerID); err != nil {
			return translate(err, "customer")
		}
		if err := s.checkPayload(txCtx, &order); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, &order); err != nil {
			return translate(err, "order")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionCreateOrder, "order", order.ID, map[string]any{
			"customerId": order.CustomerID, "payload": order.Payload,
		})
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *orderService) Get(ctx context.Context, id int64) (*model.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	return order, translate(err, "order")
}

func (s *orderService) List(ctx context.Context, page, limit int) (model.Page[model.Order], error) {
	orders, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return model.Page[model.Order]{}, fmt.Errorf("list orders: %w", err)
	}
	return model.Page[model.Order]{Items: orders, Total: total, Page: page, Limit: limit}, nil
}

func (s *orderService) Update(ctx context.Context, actor token.Identity, id int64, in model.Order) (*model.Order, error) {
	if in.ID != 0 && in.ID != id {
		return nil, invalid("body id %d does not match path id %d", in.ID, id)
	}
	var order *model.Order
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if order, err = s.repo.FindByID(txCtx, id); err != nil {
			return translate(err, "order")
		}
		order.Address = in.Address
		order.Payload = in.Payload
		if !in.TimeOrdered.IsZero() {
			order.TimeOrdered = in.TimeOrdered
		}
		if err := s.checkPayload(txCtx, order); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, order); err != nil {
			return translate(err, "order")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionUpdateOrder, "order", order.ID, map[string]any{
			"address": order.Address, "payload": order.Payload,
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) Delete(ctx context.Context, actor token.Identity, id int64) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return translate(err, "order")
		}
		return record(txCtx, s.auditRepo, actor, model.ActionDeleteOrder, "order", id, nil)
	})
}
