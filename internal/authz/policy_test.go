package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wms/internal/model"
	"wms/internal/token"
)

func as(id int64, role model.RoleTag) token.Identity {
	return token.Identity{SubjectID: id, Username: "u", Role: role}
}

func TestEmployeeCannotCreateItem(t *testing.T) {
	err := Check(as(4, model.RoleEmployee), ItemCreate, 0)
	require.ErrorIs(t, err, ErrDenied)
}

func TestManagerCanCreateItem(t *testing.T) {
	require.NoError(t, Check(as(3, model.RoleManager), ItemCreate, 0))
}

func TestCustomerCanViewOwnAccount(t *testing.T) {
	require.NoError(t, Check(as(7, model.RoleCustomer), AccountView, 7))
	require.ErrorIs(t, Check(as(7, model.RoleCustomer), AccountView, 8), ErrDenied)
	require.ErrorIs(t, Check(as(7, model.RoleCustomer), AccountList, 0), ErrDenied)
}

func TestSelfScopeNeedsTarget(t *testing.T) {
	require.ErrorIs(t, Check(as(0, model.RoleCustomer), AccountView, 0), ErrDenied)
}

func TestAdminCanDoEverything(t *testing.T) {
	for _, a := range Actions() {
		assert.NoError(t, Check(as(1, model.RoleAdmin), a, 99), a)
	}
}

func TestUnknownOrEmptyRoleIsDenied(t *testing.T) {
	for _, role := range []model.RoleTag{"", "ROOT", "admin"} {
		for _, a := range Actions() {
			err := Check(as(5, role), a, 5)
			assert.ErrorIs(t, err, ErrDenied, "%s as %q", a, role)
		}
	}
}

func TestUnknownActionIsRejected(t *testing.T) {
	err := Check(as(1, model.RoleAdmin), Action("item.explode"), 0)
	require.ErrorIs(t, err, ErrUnknownAction)
	assert.False(t, Allowed(as(1, model.RoleAdmin), Action(""), 0))
}

func TestPolicyTable(t *testing.T) {
	cases := []struct {
		action Action
		role   model.RoleTag
		allow  bool
	}{
		{BoxList, model.RoleSupplier, true},
		{BoxCreate, model.RoleEmployee, false},
		{InventoryWatch, model.RoleCustomer, true},
		{InventoryUpdate, model.RoleSupplier, false},
		{OrderList, model.RoleEmployee, true},
		{OrderList, model.RoleCustomer, false},
		{OrderCreate, model.RoleCustomer, true},
		{OrderCreate, model.RoleEmployee, false},
		{OrderDelete, model.RoleManager, true},
		{AuditList, model.RoleManager, false},
		{AccountCreate, model.RoleManager, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allow, Allowed(as(9, tc.role), tc.action, 0), "%s as %s", tc.action, tc.role)
	}
}
