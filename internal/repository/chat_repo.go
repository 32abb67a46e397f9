package repository

import (
	"time"

	"velora/internal/models"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) CreateSession(s *models.ChatSession) error {
	return r.db.Create(s).Error
}

func (r *ChatRepository) GetSessionByID(id uint) (*models.ChatSession, error) {
	var s models.ChatSession
	err := r.db.Preload("Character").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ChatRepository) ListSessionsByUser(userID uint) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := r.db.Preload("Character").
		Where("user_id = ?", userID).
		Order("last_message_at DESC, created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *ChatRepository) DeleteSession(id uint) error {
	return r.db.Delete(&models.ChatSession{}, id).Error
}

// AppendMessage stores a message and bumps the session's last_message_at.
func (r *ChatRepository) AppendMessage(m *models.ChatMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&models.ChatSession{}).
			Where("id = ?", m.SessionID).
			UpdateColumn("last_message_at", time.Now()).Error
	})
}

// ListMessages returns a page of a session's messages, oldest first (the
// order the conversation reads in).
func (r *ChatRepository) ListMessages(sessionID uint, limit, offset int) ([]models.ChatMessage, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var total int64
	if err := r.db.Model(&models.ChatMessage{}).Where("session_id = ?", sessionID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var msgs []models.ChatMessage
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Limit(limit).Offset(offset).
		Find(&msgs).Error
	return msgs, total, err
}

// RecentMessages returns the last n messages of a session, oldest first,
// used as LLM context.
func (r *ChatRepository) RecentMessages(sessionID uint, n int) ([]models.ChatMessage, error) {
	if n <= 0 {
		n = 20
	}
	var msgs []models.ChatMessage
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	// reverse into chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
