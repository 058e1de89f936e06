package service

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"gorm.io/gorm"

	"wms/internal/model"
)

type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }

// memCRUD is an in-memory CRUD keyed by the entity's ID field.
type memCRUD[T any] struct {
	mu     sync.Mutex
	next   int64
	rows   map[int64]T
	unique func(a, b *T) bool
}

func newMem[T any]() *memCRUD[T] {
	return &memCRUD[T]{rows: map[int64]T{}}
}

func idOf[T any](v *T) reflect.Value { return reflect.ValueOf(v).Elem().FieldByName("ID") }

func (m *memCRUD[T]) Create(_ context.Context, e *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unique != nil {
		for _, row := range m.rows {
			row := row
			if m.unique(&row, e) {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	m.next++
	idOf(e).SetInt(m.next)
	m.rows[m.next] = *e
	return nil
}

func (m *memCRUD[T]) FindByID(_ context.Context, id int64) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (m *memCRUD[T]) List(_ context.Context, page, limit int) ([]T, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []T{}
	for i, id := range ids {
		if i >= (page-1)*limit && len(out) < limit {
			out = append(out, m.rows[id])
		}
	}
	return out, int64(len(ids)), nil
}

func (m *memCRUD[T]) Update(_ context.Context, e *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := idOf(e).Int()
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.rows[id] = *e
	return nil
}

func (m *memCRUD[T]) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

type memAccounts struct{ *memCRUD[model.Account] }

func newMemAccounts() memAccounts {
	m := newMem[model.Account]()
	m.unique = func(a, b *model.Account) bool { return a.Username == b.Username }
	return memAccounts{m}
}

func (m memAccounts) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.Username == username {
			a := a
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type memItems struct{ *memCRUD[model.Item] }

func (m memItems) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := m.FindByID(ctx, id)
	return err == nil, nil
}

type memInventory struct{ *memCRUD[model.Inventory] }

func (m memInventory) FindByItemID(_ context.Context, itemID int64) (*model.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.rows {
		if inv.ItemID == itemID {
			inv := inv
			return &inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type memAudit struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (m *memAudit) Log(_ context.Context, e *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memAudit) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AuditLog(nil), m.entries...), int64(len(m.entries)), nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type recordingHub struct {
	mu     sync.Mutex
	events []model.InventoryEvent
}

func (h *recordingHub) Publish(ev model.InventoryEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}
