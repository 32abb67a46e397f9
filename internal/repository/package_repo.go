package repository

import (
	"velora/internal/models"

	"gorm.io/gorm"
)

type PackageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) Create(p *models.TokenPackage) error {
	return r.db.Create(p).Error
}

func (r *PackageRepository) GetByID(id uint) (*models.TokenPackage, error) {
	var p models.TokenPackage
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListActive returns packages visible on the pricing page.
func (r *PackageRepository) ListActive() ([]models.TokenPackage, error) {
	var packages []models.TokenPackage
	err := r.db.Where("active = ?", true).
		Order("sort_order ASC, price_cents ASC").
		Find(&packages).Error
	return packages, err
}

// ListAll returns every package including inactive ones (admin view).
func (r *PackageRepository) ListAll() ([]models.TokenPackage, error) {
	var packages []models.TokenPackage
	err := r.db.Order("sort_order ASC, price_cents ASC").Find(&packages).Error
	return packages, err
}

func (r *PackageRepository) Update(p *models.TokenPackage) error {
	return r.db.Save(p).Error
}

func (r *PackageRepository) Delete(id uint) error {
	return r.db.Delete(&models.TokenPackage{}, id).Error
}

func (r *PackageRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&models.TokenPackage{}).Count(&n).Error
	return n, err
}
