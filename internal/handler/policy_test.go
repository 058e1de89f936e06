package handler

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"wms/internal/middleware"
	"wms/internal/model"
	"wms/internal/token"
)

// countingService accepts everything and counts how often it was reached.
type countingService[T any] struct{ calls atomic.Int32 }

func (f *countingService[T]) Create(_ context.Context, _ token.Identity, in T) (*T, error) {
	f.calls.Add(1)
	return &in, nil
}

func (f *countingService[T]) Get(context.Context, int64) (*T, error) {
	f.calls.Add(1)
	return new(T), nil
}

func (f *countingService[T]) List(_ context.Context, page, limit int) (model.Page[T], error) {
	f.calls.Add(1)
	return model.Page[T]{Page: page, Limit: limit}, nil
}

func (f *countingService[T]) Update(_ context.Context, _ token.Identity, _ int64, in T) (*T, error) {
	f.calls.Add(1)
	return &in, nil
}

func (f *countingService[T]) Delete(context.Context, token.Identity, int64) error {
	f.calls.Add(1)
	return nil
}

type countingAudit struct{ calls atomic.Int32 }

func (f *countingAudit) List(_ context.Context, page, limit int) (model.Page[model.AuditLog], error) {
	f.calls.Add(1)
	return model.Page[model.AuditLog]{Page: page, Limit: limit}, nil
}

type routeEnv struct {
	router    *gin.Engine
	issuer    *token.Issuer
	accounts  *countingService[model.Account]
	items     *countingService[model.Item]
	boxes     *countingService[model.Box]
	inventory *countingService[model.Inventory]
	orders    *countingService[model.Order]
	audit     *countingAudit
}

func setupRoutes() *routeEnv {
	gin.SetMode(gin.TestMode)
	env := &routeEnv{
		issuer:    token.NewIssuer("test-secret", time.Hour),
		accounts:  &countingService[model.Account]{},
		items:     &countingService[model.Item]{},
		boxes:     &countingService[model.Box]{},
		inventory: &countingService[model.Inventory]{},
		orders:    &countingService[model.Order]{},
		audit:     &countingAudit{},
	}
	auth := middleware.NewAuthenticator(env.issuer, middleware.NewDenylist())

	env.router = gin.New()
	root := env.router.Group("")
	NewAccountHandler(env.accounts, auth).RegisterRoutes(root)
	NewItemHandler(env.items, auth).RegisterRoutes(root)
	NewBoxHandler(env.boxes, auth).RegisterRoutes(root)
	NewInventoryHandler(env.inventory, auth).RegisterRoutes(root)
	NewOrderHandler(env.orders, auth).RegisterRoutes(root)
	NewAuditHandler(env.audit, auth).RegisterRoutes(root)
	return env
}

func (e *routeEnv) calls() int32 {
	return e.accounts.calls.Load() + e.items.calls.Load() + e.boxes.calls.Load() +
		e.inventory.calls.Load() + e.orders.calls.Load() + e.audit.calls.Load()
}

func TestRoutePolicyByRole(t *testing.T) {
	account := model.Account{Email: "c@example.com", Username: "carol"}
	item := model.Item{UPC: "0001", Name: "Widget"}
	box := model.Box{UPC: "B-1", ItemID: 1, Count: 12}
	inv := model.Inventory{ItemID: 1, Locations: []model.LocationData{{Area: "A1", Count: 3}}}
	order := model.Order{CustomerID: 7, Address: "1 Dock Rd", Payload: []model.ItemGroup{{ItemID: 1, Count: 2}}}

	tests := []struct {
		name    string
		role    model.RoleTag
		subject int64
		method  string
		path    string
		body    any
		want    int
	}{
		{"admin lists accounts", model.RoleAdmin, 1, http.MethodGet, "/api/accounts", nil, http.StatusOK},
		{"manager cannot list accounts", model.RoleManager, 2, http.MethodGet, "/api/accounts", nil, http.StatusForbidden},
		{"admin creates account", model.RoleAdmin, 1, http.MethodPost, "/api/accounts", account, http.StatusCreated},
		{"manager cannot create account", model.RoleManager, 2, http.MethodPost, "/api/accounts", account, http.StatusForbidden},
		{"customer views own account", model.RoleCustomer, 7, http.MethodGet, "/api/accounts/7", nil, http.StatusOK},
		{"customer cannot view other account", model.RoleCustomer, 8, http.MethodGet, "/api/accounts/7", nil, http.StatusForbidden},
		{"customer updates own account", model.RoleCustomer, 7, http.MethodPut, "/api/accounts/7", account, http.StatusAccepted},
		{"employee cannot update other account", model.RoleEmployee, 4, http.MethodPut, "/api/accounts/7", account, http.StatusForbidden},
		{"supplier deletes own account", model.RoleSupplier, 9, http.MethodDelete, "/api/accounts/9", nil, http.StatusAccepted},
		{"supplier cannot delete other account", model.RoleSupplier, 9, http.MethodDelete, "/api/accounts/7", nil, http.StatusForbidden},
		{"admin views any account", model.RoleAdmin, 1, http.MethodGet, "/api/accounts/7", nil, http.StatusOK},

		{"customer lists items", model.RoleCustomer, 7, http.MethodGet, "/api/items", nil, http.StatusOK},
		{"customer cannot create item", model.RoleCustomer, 7, http.MethodPost, "/api/items", item, http.StatusForbidden},
		{"employee cannot create item", model.RoleEmployee, 4, http.MethodPost, "/api/items", item, http.StatusForbidden},
		{"manager creates item", model.RoleManager, 2, http.MethodPost, "/api/items", item, http.StatusCreated},
		{"supplier cannot delete item", model.RoleSupplier, 9, http.MethodDelete, "/api/items/1", nil, http.StatusForbidden},

		{"supplier lists boxes", model.RoleSupplier, 9, http.MethodGet, "/api/boxes", nil, http.StatusOK},
		{"supplier cannot view box", model.RoleSupplier, 9, http.MethodGet, "/api/boxes/1", nil, http.StatusForbidden},
		{"manager creates box", model.RoleManager, 2, http.MethodPost, "/api/boxes", box, http.StatusCreated},

		{"customer lists inventory", model.RoleCustomer, 7, http.MethodGet, "/api/inventory", nil, http.StatusOK},
		{"employee cannot view inventory", model.RoleEmployee, 4, http.MethodGet, "/api/inventory/1", nil, http.StatusForbidden},
		{"employee cannot update inventory", model.RoleEmployee, 4, http.MethodPut, "/api/inventory/1", inv, http.StatusForbidden},
		{"admin updates inventory", model.RoleAdmin, 1, http.MethodPut, "/api/inventory/1", inv, http.StatusAccepted},

		{"customer creates order", model.RoleCustomer, 7, http.MethodPost, "/api/orders", order, http.StatusCreated},
		{"supplier cannot create order", model.RoleSupplier, 9, http.MethodPost, "/api/orders", order, http.StatusForbidden},
		{"customer cannot list orders", model.RoleCustomer, 7, http.MethodGet, "/api/orders", nil, http.StatusForbidden},
		{"employee lists orders", model.RoleEmployee, 4, http.MethodGet, "/api/orders", nil, http.StatusOK},
		{"employee cannot delete order", model.RoleEmployee, 4, http.MethodDelete, "/api/orders/1", nil, http.StatusForbidden},

		{"admin lists audit", model.RoleAdmin, 1, http.MethodGet, "/api/audit", nil, http.StatusOK},
		{"manager cannot list audit", model.RoleManager, 2, http.MethodGet, "/api/audit", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupRoutes()
			raw, _, err := env.issuer.Issue(tt.subject, "user", tt.role)
			if !assert.NoError(t, err) {
				return
			}
			te := &testEnv{router: env.router}
			w := te.do(tt.method, tt.path, raw, tt.body)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want == http.StatusForbidden {
				assert.Zero(t, env.calls(), "denied request must not reach the service")
			} else {
				assert.Equal(t, int32(1), env.calls())
			}
		})
	}
}

func TestRoutesRequireBearer(t *testing.T) {
	env := setupRoutes()
	te := &testEnv{router: env.router}

	for _, path := range []string{"/api/accounts", "/api/items", "/api/boxes", "/api/inventory", "/api/orders", "/api/audit"} {
		assert.Equal(t, http.StatusUnauthorized, te.do(http.MethodGet, path, "", nil).Code, path)
	}
	assert.Zero(t, env.calls())
}
