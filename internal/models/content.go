package models

import (
	"time"

	"gorm.io/gorm"
)

// Banner is a homepage promo slide managed from the back office.
type Banner struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	ImageURL  string         `gorm:"size:512;not null" json:"image_url"`
	LinkURL   string         `gorm:"size:512" json:"link_url"`
	Active    bool           `gorm:"default:true;index" json:"active"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Banner) TableName() string { return "banners" }

type FAQ struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Question  string         `gorm:"size:512;not null" json:"question"`
	Answer    string         `gorm:"type:text;not null" json:"answer"`
	Category  string         `gorm:"size:100;index" json:"category"`
	Active    bool           `gorm:"default:true;index" json:"active"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FAQ) TableName() string { return "faqs" }

type BlogPost struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Slug        string         `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Excerpt     string         `gorm:"size:512" json:"excerpt"`
	Content     string         `gorm:"type:text" json:"content"`
	CoverURL    string         `gorm:"size:512" json:"cover_url"`
	Published   bool           `gorm:"default:false;index" json:"published"`
	PublishedAt *time.Time     `json:"published_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BlogPost) TableName() string { return "blog_posts" }

// Collection is a curated gallery of generated images.
type Collection struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Description string         `gorm:"size:512" json:"description"`
	CoverURL    string         `gorm:"size:512" json:"cover_url"`
	Active      bool           `gorm:"default:true;index" json:"active"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Images []CollectionImage `gorm:"foreignKey:CollectionID" json:"images,omitempty"`
}

func (Collection) TableName() string { return "collections" }

type CollectionImage struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CollectionID uint           `gorm:"not null;index" json:"collection_id"`
	ImageURL     string         `gorm:"size:512;not null" json:"image_url"`
	ThumbnailURL string         `gorm:"size:512" json:"thumbnail_url"`
	Caption      string         `gorm:"size:255" json:"caption"`
	SortOrder    int            `gorm:"default:0" json:"sort_order"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CollectionImage) TableName() string { return "collection_images" }

// ImageSuggestion is a prompt suggestion shown in the image generator UI.
type ImageSuggestion struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Prompt    string         `gorm:"size:512;not null" json:"prompt"`
	Category  string         `gorm:"size:100;index" json:"category"`
	Active    bool           `gorm:"default:true;index" json:"active"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ImageSuggestion) TableName() string { return "image_suggestions" }

// SiteSetting stores admin-configurable key/value settings (footer text,
// social links, support email).
type SiteSetting struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Key       string         `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value     string         `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SiteSetting) TableName() string { return "site_settings" }
