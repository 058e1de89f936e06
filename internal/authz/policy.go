// Package authz is the static table of protected actions shared by the client and the server.
//
// The client consults it to reject requests before they are sent. That check is
// advisory: the server runs the same Check after verifying the token signature.
package authz

import (
	"errors"
	"fmt"

	"wms/internal/model"
	"wms/internal/token"
)

var (
	ErrDenied        = errors.New("action not permitted for this identity")
	ErrUnknownAction = errors.New("unknown action")
)

// Action names one protected operation, e.g. "item.create".
type Action string

const (
	AccountCreate Action = "account.create"
	AccountList   Action = "account.list"
	AccountView   Action = "account.view"
	AccountUpdate Action = "account.update"
	AccountDelete Action = "account.delete"

	ItemList   Action = "item.list"
	ItemView   Action = "item.view"
	ItemCreate Action = "item.create"
	ItemUpdate Action = "item.update"
	ItemDelete Action = "item.delete"

	BoxList   Action = "box.list"
	BoxView   Action = "box.view"
	BoxCreate Action = "box.create"
	BoxUpdate Action = "box.update"
	BoxDelete Action = "box.delete"

	InventoryList   Action = "inventory.list"
	InventoryWatch  Action = "inventory.watch"
	InventoryView   Action = "inventory.view"
	InventoryCreate Action = "inventory.create"
	InventoryUpdate Action = "inventory.update"
	InventoryDelete Action = "inventory.delete"

	OrderList   Action = "order.list"
	OrderView   Action = "order.view"
	OrderCreate Action = "order.create"
	OrderUpdate Action = "order.update"
	OrderDelete Action = "order.delete"

	AuditList Action = "audit.list"
)

// Rule says which roles may perform an action. SelfScoped additionally admits
// any identity whose subject id equals the target id.
type Rule struct {
	Roles      []model.RoleTag
	SelfScoped bool
}

var (
	adminOnly    = []model.RoleTag{model.RoleAdmin}
	staff        = []model.RoleTag{model.RoleAdmin, model.RoleManager}
	anyRole      = model.AllRoles()
	warehouse    = []model.RoleTag{model.RoleAdmin, model.RoleManager, model.RoleEmployee}
	orderPlacers = []model.RoleTag{model.RoleAdmin, model.RoleManager, model.RoleCustomer}
)

var policy = map[Action]Rule{
	AccountCreate: {Roles: adminOnly},
	AccountList:   {Roles: adminOnly},
	AccountView:   {Roles: adminOnly, SelfScoped: true},
	AccountUpdate: {Roles: adminOnly, SelfScoped: true},
	AccountDelete: {Roles: adminOnly, SelfScoped: true},

	ItemList:   {Roles: anyRole},
	ItemView:   {Roles: anyRole},
	ItemCreate: {Roles: staff},
	ItemUpdate: {Roles: staff},
	ItemDelete: {Roles: staff},

	BoxList:   {Roles: anyRole},
	BoxView:   {Roles: staff},
	BoxCreate: {Roles: staff},
	BoxUpdate: {Roles: staff},
	BoxDelete: {Roles: staff},

	InventoryList:   {Roles: anyRole},
	InventoryWatch:  {Roles: anyRole},
	InventoryView:   {Roles: staff},
	InventoryCreate: {Roles: staff},
	InventoryUpdate: {Roles: staff},
	InventoryDelete: {Roles: staff},

	OrderList:   {Roles: warehouse},
	OrderView:   {Roles: warehouse},
	OrderCreate: {Roles: orderPlacers},
	OrderUpdate: {Roles: staff},
	OrderDelete: {Roles: staff},

	AuditList: {Roles: adminOnly},
}

// Lookup returns the rule for a.
func Lookup(a Action) (Rule, bool) {
	r, ok := policy[a]
	return r, ok
}

// Actions lists every known action.
func Actions() []Action {
	out := make([]Action, 0, len(policy))
	for a := range policy {
		out = append(out, a)
	}
	return out
}

// Check decides whether ident may perform a on target. target is the id of the
// entity acted upon and only matters for self-scoped actions; pass 0 otherwise.
// Unknown actions and unknown or empty roles are denied.
func Check(ident token.Identity, a Action, target int64) error {
	rule, ok := policy[a]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
	if !ident.Role.Valid() {
		return fmt.Errorf("%w: %s requires a known role", ErrDenied, a)
	}
	for _, r := range rule.Roles {
		if r == ident.Role {
			return nil
		}
	}
	if rule.SelfScoped && target != 0 && ident.SubjectID != 0 && ident.SubjectID == target {
		return nil
	}
	return fmt.Errorf("%w: %s as %s", ErrDenied, a, ident.Role)
}

// Allowed is Check reduced to a boolean.
func Allowed(ident token.Identity, a Action, target int64) bool {
	return Check(ident, a, target) == nil
}
