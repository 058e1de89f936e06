package model

import (
	"time"
)

const (
	ActionCreateAccount   = "CREATE_ACCOUNT"
	ActionUpdateAccount   = "UPDATE_ACCOUNT"
	ActionDeleteAccount   = "DELETE_ACCOUNT"
	ActionCreateItem      = "CREATE_ITEM"
	ActionUpdateItem      = "UPDATE_ITEM"
	ActionDeleteItem      = "DELETE_ITEM"
	ActionCreateBox       = "CREATE_BOX"
	ActionUpdateBox       = "UPDATE_BOX"
	ActionDeleteBox       = "DELETE_BOX"
	ActionCreateInventory = "CREATE_INVENTORY"
	ActionUpdateInventory = "UPDATE_INVENTORY"
	ActionDeleteInventory = "DELETE_INVENTORY"
	ActionCreateOrder     = "CREATE_ORDER"
	ActionUpdateOrder     = "UPDATE_ORDER"
	ActionDeleteOrder     = "DELETE_ORDER"
)

// AuditLog tracks Who, What, and When for every mutation
type AuditLog struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	ActorID    int64     `gorm:"index" json:"actor_id"`
	ActorName  string    `gorm:"type:varchar(255)" json:"actor_name"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string    `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   int64     `gorm:"index" json:"entity_id"`
	Details    string    `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
