package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"wms/internal/authz"
	"wms/internal/model"
	"wms/pkg/pagination"
)

// ListOptions selects one page of a list endpoint. Zero values use server defaults.
type ListOptions struct {
	Page  int
	Limit int
}

func (o ListOptions) query() url.Values {
	return pagination.Query(o.Page, o.Limit)
}

// resource binds the policy actions of one REST collection.
type resource struct {
	path                               string
	list, view, create, update, remove authz.Action
	selfScoped                         bool
}

var (
	accounts = resource{"/api/accounts", authz.AccountList, authz.AccountView, authz.AccountCreate, authz.AccountUpdate, authz.AccountDelete, true}
	items    = resource{"/api/items", authz.ItemList, authz.ItemView, authz.ItemCreate, authz.ItemUpdate, authz.ItemDelete, false}
	boxes    = resource{"/api/boxes", authz.BoxList, authz.BoxView, authz.BoxCreate, authz.BoxUpdate, authz.BoxDelete, false}
	stock    = resource{"/api/inventory", authz.InventoryList, authz.InventoryView, authz.InventoryCreate, authz.InventoryUpdate, authz.InventoryDelete, false}
	orders   = resource{"/api/orders", authz.OrderList, authz.OrderView, authz.OrderCreate, authz.OrderUpdate, authz.OrderDelete, false}
)

func (r resource) target(id int64) int64 {
	if r.selfScoped {
		return id
	}
	return 0
}

func (r resource) item(id int64) string { return r.path + "/" + strconv.FormatInt(id, 10) }

func list[T any](ctx context.Context, c *Client, r resource, opts ListOptions) (model.Page[T], error) {
	var page model.Page[T]
	if err := c.authorize(r.list, 0); err != nil {
		return page, err
	}
	err := c.do(ctx, http.MethodGet, r.path, opts.query(), http.StatusOK, nil, &page)
	return page, err
}

func get[T any](ctx context.Context, c *Client, r resource, id int64) (T, error) {
	var out T
	if err := c.authorize(r.view, r.target(id)); err != nil {
		return out, err
	}
	err := c.do(ctx, http.MethodGet, r.item(id), nil, http.StatusOK, nil, &out)
	return out, err
}

func create[T any](ctx context.Context, c *Client, r resource, in *T) (T, error) {
	var out T
	if err := c.authorize(r.create, 0); err != nil {
		return out, err
	}
	if err := c.check(in); err != nil {
		return out, err
	}
	err := c.do(ctx, http.MethodPost, r.path, nil, http.StatusCreated, in, &out)
	return out, err
}

func update[T any](ctx context.Context, c *Client, r resource, id int64, in *T) (T, error) {
	var out T
	if err := c.authorize(r.update, r.target(id)); err != nil {
		return out, err
	}
	if err := c.check(in); err != nil {
		return out, err
	}
	err := c.do(ctx, http.MethodPut, r.item(id), nil, http.StatusAccepted, in, &out)
	return out, err
}

func remove(ctx context.Context, c *Client, r resource, id int64) error {
	if err := c.authorize(r.remove, r.target(id)); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, r.item(id), nil, http.StatusAccepted, nil, nil)
}

func checkPathID(bodyID, pathID int64) error {
	if bodyID != 0 && bodyID != pathID {
		return fmt.Errorf("%w: body id %d does not match %d", ErrValidation, bodyID, pathID)
	}
	return nil
}

// Accounts

func (c *Client) ListAccounts(ctx context.Context, opts ListOptions) (model.Page[model.Account], error) {
	return list[model.Account](ctx, c, accounts, opts)
}

func (c *Client) GetAccount(ctx context.Context, id int64) (model.Account, error) {
	return get[model.Account](ctx, c, accounts, id)
}

// CreateAccount requires a password; the server stores only its hash.
func (c *Client) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	if err := c.authorize(accounts.create, 0); err != nil {
		return model.Account{}, err
	}
	if a.Password == "" {
		return model.Account{}, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if a.Role.Value != "" && !a.Role.Value.Valid() {
		return model.Account{}, fmt.Errorf("%w: unknown role %q", ErrValidation, a.Role.Value)
	}
	return create(ctx, c, accounts, &a)
}

// UpdateAccount lets non-admins edit their own account but not its role.
func (c *Client) UpdateAccount(ctx context.Context, id int64, a model.Account) (model.Account, error) {
	if err := checkPathID(a.ID, id); err != nil {
		return model.Account{}, err
	}
	ident, active := c.store.Identity()
	if active && ident.Role != model.RoleAdmin && a.Role.Value != "" && a.Role.Value != ident.Role {
		c.log.Warn("request rejected locally: role change by non-admin")
		return model.Account{}, fmt.Errorf("%w: only ADMIN may change roles", ErrUnauthorized)
	}
	a.ID = id
	return update(ctx, c, accounts, id, &a)
}

func (c *Client) DeleteAccount(ctx context.Context, id int64) error {
	return remove(ctx, c, accounts, id)
}

// Items

func (c *Client) ListItems(ctx context.Context, opts ListOptions) (model.Page[model.Item], error) {
	return list[model.Item](ctx, c, items, opts)
}

func (c *Client) GetItem(ctx context.Context, id int64) (model.Item, error) {
	return get[model.Item](ctx, c, items, id)
}

func (c *Client) CreateItem(ctx context.Context, it model.Item) (model.Item, error) {
	return create(ctx, c, items, &it)
}

func (c *Client) UpdateItem(ctx context.Context, id int64, it model.Item) (model.Item, error) {
	if err := checkPathID(it.ID, id); err != nil {
		return model.Item{}, err
	}
	it.ID = id
	return update(ctx, c, items, id, &it)
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return remove(ctx, c, items, id)
}

// Boxes

func (c *Client) ListBoxes(ctx context.Context, opts ListOptions) (model.Page[model.Box], error) {
	return list[model.Box](ctx, c, boxes, opts)
}

func (c *Client) GetBox(ctx context.Context, id int64) (model.Box, error) {
	return get[model.Box](ctx, c, boxes, id)
}

func (c *Client) CreateBox(ctx context.Context, b model.Box) (model.Box, error) {
	return create(ctx, c, boxes, &b)
}

func (c *Client) UpdateBox(ctx context.Context, id int64, b model.Box) (model.Box, error) {
	if err := checkPathID(b.ID, id); err != nil {
		return model.Box{}, err
	}
	b.ID = id
	return update(ctx, c, boxes, id, &b)
}

func (c *Client) DeleteBox(ctx context.Context, id int64) error {
	return remove(ctx, c, boxes, id)
}

// Inventory

func (c *Client) ListInventory(ctx context.Context, opts ListOptions) (model.Page[model.Inventory], error) {
	return list[model.Inventory](ctx, c, stock, opts)
}

func (c *Client) GetInventory(ctx context.Context, id int64) (model.Inventory, error) {
	return get[model.Inventory](ctx, c, stock, id)
}

func (c *Client) CreateInventory(ctx context.Context, inv model.Inventory) (model.Inventory, error) {
	inv.SumLocations()
	return create(ctx, c, stock, &inv)
}

func (c *Client) UpdateInventory(ctx context.Context, id int64, inv model.Inventory) (model.Inventory, error) {
	if err := checkPathID(inv.ID, id); err != nil {
		return model.Inventory{}, err
	}
	inv.ID = id
	inv.SumLocations()
	return update(ctx, c, stock, id, &inv)
}

func (c *Client) DeleteInventory(ctx context.Context, id int64) error {
	return remove(ctx, c, stock, id)
}

// Orders

func (c *Client) ListOrders(ctx context.Context, opts ListOptions) (model.Page[model.Order], error) {
	return list[model.Order](ctx, c, orders, opts)
}

func (c *Client) GetOrder(ctx context.Context, id int64) (model.Order, error) {
	return get[model.Order](ctx, c, orders, id)
}

// CreateOrder places the order for the signed-in subject when no customer is given.
func (c *Client) CreateOrder(ctx context.Context, o model.Order) (model.Order, error) {
	if o.CustomerID == 0 {
		o.CustomerID = c.store.SubjectID()
	}
	return create(ctx, c, orders, &o)
}

func (c *Client) UpdateOrder(ctx context.Context, id int64, o model.Order) (model.Order, error) {
	if err := checkPathID(o.ID, id); err != nil {
		return model.Order{}, err
	}
	o.ID = id
	return update(ctx, c, orders, id, &o)
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return remove(ctx, c, orders, id)
}

// Audit

// ListAudit returns the newest audit entries first.
func (c *Client) ListAudit(ctx context.Context, opts ListOptions) (model.Page[model.AuditLog], error) {
	var page model.Page[model.AuditLog]
	if err := c.authorize(authz.AuditList, 0); err != nil {
		return page, err
	}
	err := c.do(ctx, http.MethodGet, "/api/audit", opts.query(), http.StatusOK, nil, &page)
	return page, err
}
