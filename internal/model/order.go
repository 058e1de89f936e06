package model

import "time"

// ItemGroup is one line of an order
type ItemGroup struct {
	ItemID int64 `json:"itemId" binding:"required"`
	Count  int64 `json:"count" binding:"gt=0"`
}

// Order is a customer order awaiting fulfilment
type Order struct {
	ID          int64       `gorm:"primaryKey" json:"id"`
	CustomerID  int64       `gorm:"not null;index" json:"customerId" binding:"required"`
	Address     string      `gorm:"type:text;not null" json:"address" binding:"required"`
	TimeOrdered time.Time   `gorm:"not null" json:"timeOrdered"`
	Payload     []ItemGroup `gorm:"type:jsonb;serializer:json" json:"payload" binding:"required,min=1,dive"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
