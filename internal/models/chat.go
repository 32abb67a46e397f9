package models

import (
	"time"

	"gorm.io/gorm"
)

type ChatSession struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	CharacterID   uint           `gorm:"not null;index" json:"character_id"`
	Title         string         `gorm:"size:255" json:"title"`
	LastMessageAt *time.Time     `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Character Character `gorm:"foreignKey:CharacterID" json:"character,omitempty"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	Role      string    `gorm:"size:10;not null" json:"role"` // user | assistant
	Content   string    `gorm:"type:text;not null" json:"content"`
	TokenCost int64     `gorm:"default:0" json:"token_cost"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Session ChatSession `gorm:"foreignKey:SessionID" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
