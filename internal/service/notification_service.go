package service

import (
	"encoding/json"
	"fmt"

	"velora/internal/models"
	"velora/internal/repository"
)

// NotificationService writes in-app notification rows.
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) NotifyPaymentConfirmed(userID uint, tokens int64, reference string) error {
	data, _ := json.Marshal(map[string]interface{}{"reference": reference, "tokens": tokens})
	return s.notificationRepo.Create(&models.Notification{
		UserID: userID,
		Type:   "payment_confirmed",
		Title:  "Payment confirmed",
		Body:   fmt.Sprintf("%d tokens have been added to your balance.", tokens),
		Data:   string(data),
	})
}

func (s *NotificationService) NotifyBonusGranted(userID uint, tokens int64, reason string) error {
	data, _ := json.Marshal(map[string]interface{}{"tokens": tokens, "reason": reason})
	return s.notificationRepo.Create(&models.Notification{
		UserID: userID,
		Type:   "bonus_granted",
		Title:  "Bonus tokens",
		Body:   fmt.Sprintf("You received %d bonus tokens.", tokens),
		Data:   string(data),
	})
}

func (s *NotificationService) NotifyGenerationFailed(userID uint, requestID string, refunded int64) error {
	data, _ := json.Marshal(map[string]interface{}{"request_id": requestID, "refunded": refunded})
	return s.notificationRepo.Create(&models.Notification{
		UserID: userID,
		Type:   "generation_failed",
		Title:  "Image generation failed",
		Body:   fmt.Sprintf("Your generation could not be completed. %d tokens were refunded.", refunded),
		Data:   string(data),
	})
}
