package models

import (
	"time"

	"gorm.io/gorm"
)

// Character is an AI persona users chat with and generate images of.
type Character struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:100;not null" json:"name"`
	Slug       string         `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Tagline    string         `gorm:"size:255" json:"tagline"`
	Persona    string         `gorm:"type:text" json:"-"` // system prompt, not exposed to clients
	AvatarURL  string         `gorm:"size:512" json:"avatar_url"`
	CoverURL   string         `gorm:"size:512" json:"cover_url"`
	Tags       string         `gorm:"size:255" json:"tags"`                            // comma-separated
	Visibility string         `gorm:"size:10;not null;default:'PUBLIC'" json:"visibility"` // PUBLIC | HIDDEN
	SortOrder  int            `gorm:"default:0" json:"sort_order"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Character) TableName() string {
	return "characters"
}

// CharacterFavorite marks a character as favorited by a user.
type CharacterFavorite struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_fav_user_character" json:"user_id"`
	CharacterID uint      `gorm:"not null;uniqueIndex:idx_fav_user_character" json:"character_id"`
	CreatedAt   time.Time `json:"created_at"`

	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Character Character `gorm:"foreignKey:CharacterID" json:"character,omitempty"`
}

func (CharacterFavorite) TableName() string {
	return "character_favorites"
}
