package repository

import (
	"velora/internal/models"

	"gorm.io/gorm"
)

type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) Create(c *models.Collection) error {
	return r.db.Create(c).Error
}

func (r *CollectionRepository) GetByID(id uint) (*models.Collection, error) {
	var c models.Collection
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CollectionRepository) GetBySlug(slug string) (*models.Collection, error) {
	var c models.Collection
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Where("slug = ?", slug).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CollectionRepository) ListActive() ([]models.Collection, error) {
	var collections []models.Collection
	err := r.db.Where("active = ?", true).Order("sort_order ASC").Find(&collections).Error
	return collections, err
}

func (r *CollectionRepository) ListAll() ([]models.Collection, error) {
	var collections []models.Collection
	err := r.db.Order("sort_order ASC").Find(&collections).Error
	return collections, err
}

func (r *CollectionRepository) Update(c *models.Collection) error {
	return r.db.Save(c).Error
}

func (r *CollectionRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&models.CollectionImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Collection{}, id).Error
	})
}

func (r *CollectionRepository) AddImage(img *models.CollectionImage) error {
	return r.db.Create(img).Error
}

func (r *CollectionRepository) RemoveImage(collectionID, imageID uint) error {
	return r.db.Where("collection_id = ?", collectionID).
		Delete(&models.CollectionImage{}, imageID).Error
}
