package model

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm/schema"
)

// RoleTag is the single active role carried by an identity
type RoleTag string

const (
	RoleAdmin    RoleTag = "ADMIN"
	RoleManager  RoleTag = "MANAGER"
	RoleEmployee RoleTag = "EMPLOYEE"
	RoleSupplier RoleTag = "SUPPLIER"
	RoleCustomer RoleTag = "CUSTOMER"
)

// AllRoles lists every known role tag.
func AllRoles() []RoleTag {
	return []RoleTag{RoleAdmin, RoleManager, RoleEmployee, RoleSupplier, RoleCustomer}
}

// Valid reports whether r is one of the known tags. Empty and unknown tags are never valid.
func (r RoleTag) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee, RoleSupplier, RoleCustomer:
		return true
	}
	return false
}

// ParseRoleTag normalizes user input ("manager", " ADMIN ") into a RoleTag.
func ParseRoleTag(s string) (RoleTag, error) {
	tag := RoleTag(strings.ToUpper(strings.TrimSpace(s)))
	if !tag.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return tag, nil
}

// Role is the flags-style role encoding used on the wire and inside tokens:
// every possible tag is named by a sibling field and Value carries the active one.
// Only Value is meaningful.
type Role struct {
	ADMIN    string
	MANAGER  string
	EMPLOYEE string
	SUPPLIER string
	CUSTOMER string
	Value    RoleTag
}

// NewRole builds the wire encoding for tag.
func NewRole(tag RoleTag) Role {
	return Role{
		ADMIN:    string(RoleAdmin),
		MANAGER:  string(RoleManager),
		EMPLOYEE: string(RoleEmployee),
		SUPPLIER: string(RoleSupplier),
		CUSTOMER: string(RoleCustomer),
		Value:    tag,
	}
}

// Tag returns the active tag.
func (r Role) Tag() RoleTag { return r.Value }

func init() {
	schema.RegisterSerializer("roletag", roleSerializer{})
}

// roleSerializer persists a Role as its bare active tag.
type roleSerializer struct{}

func (roleSerializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue any) error {
	var tag string
	switch v := dbValue.(type) {
	case nil:
	case string:
		tag = v
	case []byte:
		tag = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", dbValue)
	}
	field.ReflectValueOf(ctx, dst).Set(reflect.ValueOf(NewRole(RoleTag(tag))))
	return nil
}

func (roleSerializer) Value(_ context.Context, _ *schema.Field, _ reflect.Value, fieldValue any) (any, error) {
	r, ok := fieldValue.(Role)
	if !ok {
		return nil, fmt.Errorf("cannot store %T as Role", fieldValue)
	}
	return string(r.Value), nil
}
