package database

import (
	"errors"
	"log"

	"velora/config"
	"velora/internal/domain"
	"velora/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.TokenBalance{},
		&models.TokenTransaction{},
		&models.TokenPackage{},
		&models.Payment{},
		&models.Character{},
		&models.CharacterFavorite{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.GenerationRequest{},
		&models.Banner{},
		&models.FAQ{},
		&models.BlogPost{},
		&models.Collection{},
		&models.CollectionImage{},
		&models.ImageSuggestion{},
		&models.SiteSetting{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the back-office admin account if it does not exist.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig) {
	var existing models.User
	err := db.Where("email = ?", cfg.Email).First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[seed] admin lookup: %v", err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] admin password: %v", err)
		return
	}
	admin := &models.User{
		Username:     "admin",
		Email:        cfg.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("[seed] admin create: %v", err)
		return
	}
	log.Printf("[seed] admin account created: %s", cfg.Email)
}

// SeedTokenPackages installs the default pricing catalog on first boot.
func SeedTokenPackages(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.TokenPackage{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	packages := []models.TokenPackage{
		{Name: "Starter", Tokens: 100, PriceCents: 499, Currency: "USD", Active: true, SortOrder: 1},
		{Name: "Plus", Tokens: 250, PriceCents: 999, Currency: "USD", Active: true, SortOrder: 2},
		{Name: "Pro", Tokens: 700, PriceCents: 2499, Currency: "USD", Active: true, SortOrder: 3},
	}
	if err := db.Create(&packages).Error; err != nil {
		log.Printf("[seed] token packages: %v", err)
		return
	}
	log.Printf("[seed] default token packages created")
}
