package repository

import (
	"errors"

	"velora/internal/domain"
	"velora/internal/models"

	"gorm.io/gorm"
)

type CharacterRepository struct {
	db *gorm.DB
}

func NewCharacterRepository(db *gorm.DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func (r *CharacterRepository) Create(c *models.Character) error {
	return r.db.Create(c).Error
}

func (r *CharacterRepository) GetByID(id uint) (*models.Character, error) {
	var c models.Character
	err := r.db.First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CharacterRepository) GetBySlug(slug string) (*models.Character, error) {
	var c models.Character
	err := r.db.Where("slug = ?", slug).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListPublic returns publicly visible characters for the catalog.
func (r *CharacterRepository) ListPublic() ([]models.Character, error) {
	var chars []models.Character
	err := r.db.Where("visibility = ?", domain.VisibilityPublic).
		Order("sort_order ASC, name ASC").
		Find(&chars).Error
	return chars, err
}

// ListAll returns every character including hidden ones (admin view).
func (r *CharacterRepository) ListAll() ([]models.Character, error) {
	var chars []models.Character
	err := r.db.Order("sort_order ASC, name ASC").Find(&chars).Error
	return chars, err
}

func (r *CharacterRepository) Update(c *models.Character) error {
	return r.db.Save(c).Error
}

func (r *CharacterRepository) Delete(id uint) error {
	return r.db.Delete(&models.Character{}, id).Error
}

// AddFavorite is a no-op if the favorite already exists.
func (r *CharacterRepository) AddFavorite(userID, characterID uint) error {
	var existing models.CharacterFavorite
	err := r.db.Where("user_id = ? AND character_id = ?", userID, characterID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Create(&models.CharacterFavorite{UserID: userID, CharacterID: characterID}).Error
}

func (r *CharacterRepository) RemoveFavorite(userID, characterID uint) error {
	return r.db.Where("user_id = ? AND character_id = ?", userID, characterID).
		Delete(&models.CharacterFavorite{}).Error
}

func (r *CharacterRepository) ListFavorites(userID uint) ([]models.CharacterFavorite, error) {
	var favs []models.CharacterFavorite
	err := r.db.Preload("Character").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favs).Error
	return favs, err
}
