package models

import (
	"time"
)

// TokenBalance holds the denormalized token balance for one user. The row is
// created lazily on first credit and never deleted. The balance must equal
// the sum of the user's token_transactions amounts at all times.
type TokenBalance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (TokenBalance) TableName() string {
	return "user_tokens"
}

// TokenTransaction is the append-only ledger entry. Rows are never updated
// or deleted; every balance mutation writes exactly one of these in the same
// database transaction.
type TokenTransaction struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	Amount         int64     `gorm:"not null" json:"amount"`             // positive = credit, negative = debit
	Type           string    `gorm:"size:20;not null;index" json:"type"` // purchase, usage, refund, bonus
	Description    string    `gorm:"size:255" json:"description"`
	Metadata       string    `gorm:"type:text" json:"metadata"` // JSON
	IdempotencyKey *string   `gorm:"uniqueIndex;size:191" json:"-"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (TokenTransaction) TableName() string {
	return "token_transactions"
}
