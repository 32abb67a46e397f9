package repository

import (
	"velora/internal/models"

	"gorm.io/gorm"
)

type BlogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) Create(p *models.BlogPost) error {
	return r.db.Create(p).Error
}

func (r *BlogRepository) GetByID(id uint) (*models.BlogPost, error) {
	var p models.BlogPost
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BlogRepository) GetBySlug(slug string) (*models.BlogPost, error) {
	var p models.BlogPost
	err := r.db.Where("slug = ?", slug).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPublished returns a page of published posts, newest first.
func (r *BlogRepository) ListPublished(limit, offset int) ([]models.BlogPost, int64, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var total int64
	if err := r.db.Model(&models.BlogPost{}).Where("published = ?", true).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var posts []models.BlogPost
	err := r.db.Where("published = ?", true).
		Order("published_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, total, err
}

func (r *BlogRepository) ListAll() ([]models.BlogPost, error) {
	var posts []models.BlogPost
	err := r.db.Order("created_at DESC").Find(&posts).Error
	return posts, err
}

func (r *BlogRepository) Update(p *models.BlogPost) error {
	return r.db.Save(p).Error
}

func (r *BlogRepository) Delete(id uint) error {
	return r.db.Delete(&models.BlogPost{}, id).Error
}
