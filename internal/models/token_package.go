package models

import (
	"time"

	"gorm.io/gorm"
)

// TokenPackage is a purchasable bundle of tokens shown on the pricing page.
type TokenPackage struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:100;not null" json:"name"`
	Tokens     int64          `gorm:"not null" json:"tokens"`
	PriceCents int64          `gorm:"not null" json:"price_cents"`
	Currency   string         `gorm:"size:3;default:'USD'" json:"currency"`
	Active     bool           `gorm:"default:true;index" json:"active"`
	SortOrder  int            `gorm:"default:0" json:"sort_order"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (TokenPackage) TableName() string {
	return "token_packages"
}
