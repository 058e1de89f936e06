package model

import (
	"time"

	"gorm.io/gorm"
)

// Account is a warehouse user able to sign in
type Account struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	Firstname string         `gorm:"type:varchar(100)" json:"firstname"`
	Lastname  string         `gorm:"type:varchar(100)" json:"lastname"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" binding:"required,email"`
	Phone     string         `gorm:"type:varchar(20)" json:"phone"`
	Username  string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username" binding:"required"`
	Password  string         `gorm:"type:varchar(255);not null" json:"password,omitempty"` // bcrypt hash at rest, never echoed back
	Role      Role           `gorm:"type:varchar(20);not null;serializer:roletag" json:"role"`
	Active    bool           `gorm:"not null" json:"active"`
	Created   time.Time      `gorm:"autoCreateTime" json:"created"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Credentials is the POST /login body
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the POST /login success body
type TokenResponse struct {
	Token string `json:"token"`
}

// Page wraps one page of a list endpoint.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
