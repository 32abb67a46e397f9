package models

import (
	"time"

	"gorm.io/gorm"
)

// GenerationRequest tracks one paid text-to-image job from debit to result.
type GenerationRequest struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	RequestID      string         `gorm:"uniqueIndex;size:64;not null" json:"request_id"` // uuid, used in refund idempotency keys
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	CharacterID    *uint          `gorm:"index" json:"character_id"`
	Prompt         string         `gorm:"type:text;not null" json:"prompt"`
	NegativePrompt string         `gorm:"type:text" json:"negative_prompt"`
	Width          int            `gorm:"default:1024" json:"width"`
	Height         int            `gorm:"default:1024" json:"height"`
	Status         string         `gorm:"size:20;not null;index" json:"status"` // PENDING, RUNNING, COMPLETED, FAILED, REFUNDED
	ProviderTaskID string         `gorm:"size:128;index" json:"-"`
	ImageURL       string         `gorm:"size:512" json:"image_url"`
	ThumbnailURL   string         `gorm:"size:512" json:"thumbnail_url"`
	TokenCost      int64          `gorm:"not null" json:"token_cost"`
	Error          string         `gorm:"size:512" json:"error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User      User       `gorm:"foreignKey:UserID" json:"-"`
	Character *Character `gorm:"foreignKey:CharacterID" json:"character,omitempty"`
}

func (GenerationRequest) TableName() string {
	return "generation_requests"
}
