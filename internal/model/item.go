package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is a catalogued product identified by its UPC
type Item struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	UPC         string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"upc" binding:"required"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Weight      decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0" json:"weight"`
	Image       []byte          `gorm:"type:bytea" json:"image,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Box is a packaged quantity of a single item
type Box struct {
	ID         int64          `gorm:"primaryKey" json:"id"`
	UPC        string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"upc" binding:"required"`
	ItemID     int64          `gorm:"not null;index" json:"itemId" binding:"required"`
	Item       *Item          `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Dimensions string         `gorm:"type:varchar(64)" json:"dimensions"`
	Count      int64          `gorm:"not null" json:"count" binding:"gte=0"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// LocationData is the stock count held in one warehouse area
type LocationData struct {
	Area  string `json:"area" binding:"required"`
	Count int64  `json:"count" binding:"gte=0"`
}

// Inventory tracks stock of one item across warehouse areas
type Inventory struct {
	ID         int64          `gorm:"primaryKey" json:"id"`
	ItemID     int64          `gorm:"not null;uniqueIndex" json:"itemId" binding:"required"`
	Item       *Item          `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	TotalCount int64          `gorm:"not null" json:"total"`
	Locations  []LocationData `gorm:"type:jsonb;serializer:json" json:"locations" binding:"dive"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// SumLocations recomputes TotalCount from the per-area counts.
func (i *Inventory) SumLocations() {
	var total int64
	for _, l := range i.Locations {
		total += l.Count
	}
	i.TotalCount = total
}

// Inventory event names broadcast over the websocket hub
const (
	EventInventoryCreated = "inventory.created"
	EventInventoryUpdated = "inventory.updated"
	EventInventoryDeleted = "inventory.deleted"
)

// InventoryEvent is the websocket payload sent on inventory changes
type InventoryEvent struct {
	Event string    `json:"event"`
	Data  Inventory `json:"data"`
}
