package repository

import (
	"velora/internal/domain"
	"velora/internal/models"

	"gorm.io/gorm"
)

type GenerationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

func (r *GenerationRepository) Create(g *models.GenerationRequest) error {
	return r.db.Create(g).Error
}

func (r *GenerationRepository) GetByRequestID(requestID string) (*models.GenerationRequest, error) {
	var g models.GenerationRequest
	err := r.db.Where("request_id = ?", requestID).First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GenerationRepository) Update(g *models.GenerationRequest) error {
	return r.db.Save(g).Error
}

func (r *GenerationRepository) ListByUser(userID uint, limit, offset int) ([]models.GenerationRequest, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var total int64
	if err := r.db.Model(&models.GenerationRequest{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var gens []models.GenerationRequest
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&gens).Error
	return gens, total, err
}

func (r *GenerationRepository) CountCompleted() (int64, error) {
	var n int64
	err := r.db.Model(&models.GenerationRequest{}).
		Where("status = ?", domain.GenerationStatusCompleted).
		Count(&n).Error
	return n, err
}
