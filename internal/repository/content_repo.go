package repository

import (
	"errors"

	"velora/internal/models"

	"gorm.io/gorm"
)

// BannerRepository, FAQRepository, SuggestionRepository and SettingRepository
// back the public content surface and its admin CRUD.

type BannerRepository struct {
	db *gorm.DB
}

func NewBannerRepository(db *gorm.DB) *BannerRepository {
	return &BannerRepository{db: db}
}

func (r *BannerRepository) Create(b *models.Banner) error {
	return r.db.Create(b).Error
}

func (r *BannerRepository) GetByID(id uint) (*models.Banner, error) {
	var b models.Banner
	err := r.db.First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BannerRepository) ListActive() ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.Where("active = ?", true).Order("sort_order ASC").Find(&banners).Error
	return banners, err
}

func (r *BannerRepository) ListAll() ([]models.Banner, error) {
	var banners []models.Banner
	err := r.db.Order("sort_order ASC").Find(&banners).Error
	return banners, err
}

func (r *BannerRepository) Update(b *models.Banner) error {
	return r.db.Save(b).Error
}

func (r *BannerRepository) Delete(id uint) error {
	return r.db.Delete(&models.Banner{}, id).Error
}

type FAQRepository struct {
	db *gorm.DB
}

func NewFAQRepository(db *gorm.DB) *FAQRepository {
	return &FAQRepository{db: db}
}

func (r *FAQRepository) Create(f *models.FAQ) error {
	return r.db.Create(f).Error
}

func (r *FAQRepository) GetByID(id uint) (*models.FAQ, error) {
	var f models.FAQ
	err := r.db.First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FAQRepository) ListActive() ([]models.FAQ, error) {
	var faqs []models.FAQ
	err := r.db.Where("active = ?", true).
		Order("category ASC, sort_order ASC").
		Find(&faqs).Error
	return faqs, err
}

func (r *FAQRepository) ListAll() ([]models.FAQ, error) {
	var faqs []models.FAQ
	err := r.db.Order("category ASC, sort_order ASC").Find(&faqs).Error
	return faqs, err
}

func (r *FAQRepository) Update(f *models.FAQ) error {
	return r.db.Save(f).Error
}

func (r *FAQRepository) Delete(id uint) error {
	return r.db.Delete(&models.FAQ{}, id).Error
}

type SuggestionRepository struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

func (r *SuggestionRepository) Create(s *models.ImageSuggestion) error {
	return r.db.Create(s).Error
}

func (r *SuggestionRepository) GetByID(id uint) (*models.ImageSuggestion, error) {
	var s models.ImageSuggestion
	err := r.db.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SuggestionRepository) ListActive() ([]models.ImageSuggestion, error) {
	var suggestions []models.ImageSuggestion
	err := r.db.Where("active = ?", true).
		Order("category ASC, sort_order ASC").
		Find(&suggestions).Error
	return suggestions, err
}

func (r *SuggestionRepository) ListAll() ([]models.ImageSuggestion, error) {
	var suggestions []models.ImageSuggestion
	err := r.db.Order("category ASC, sort_order ASC").Find(&suggestions).Error
	return suggestions, err
}

func (r *SuggestionRepository) Update(s *models.ImageSuggestion) error {
	return r.db.Save(s).Error
}

func (r *SuggestionRepository) Delete(id uint) error {
	return r.db.Delete(&models.ImageSuggestion{}, id).Error
}

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(key string) (*models.SiteSetting, error) {
	var s models.SiteSetting
	err := r.db.Where("`key` = ?", key).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingRepository) GetAll() ([]models.SiteSetting, error) {
	var settings []models.SiteSetting
	err := r.db.Order("`key` ASC").Find(&settings).Error
	return settings, err
}

// Set upserts a single setting by key.
func (r *SettingRepository) Set(key, value string) error {
	var s models.SiteSetting
	err := r.db.Where("`key` = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.SiteSetting{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	s.Value = value
	return r.db.Save(&s).Error
}
