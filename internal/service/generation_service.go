package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"velora/config"
	"velora/internal/domain"
	"velora/internal/models"
	"velora/internal/repository"
	"velora/pkg/cloudinary"
	"velora/pkg/novita"

	"github.com/google/uuid"
)

// ImageProvider is the slice of the Novita client the generation flow needs.
type ImageProvider interface {
	CreateTask(ctx context.Context, req novita.TaskRequest) (string, error)
	WaitForResult(ctx context.Context, taskID string) (string, error)
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

type GenerateParams struct {
	UserID         uint
	CharacterID    *uint
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
}

// GenerationService runs the paid image-generation flow: debit first, then
// do the provider work, refunding the debit if the provider fails.
type GenerationService struct {
	cfg      *config.TokenConfig
	ledger   *repository.LedgerRepository
	genRepo  *repository.GenerationRepository
	provider ImageProvider
	cloud    cloudinary.Client
	notifSvc *NotificationService
}

func NewGenerationService(cfg *config.TokenConfig, ledger *repository.LedgerRepository, genRepo *repository.GenerationRepository, provider ImageProvider, cloud cloudinary.Client, notifSvc *NotificationService) *GenerationService {
	return &GenerationService{
		cfg:      cfg,
		ledger:   ledger,
		genRepo:  genRepo,
		provider: provider,
		cloud:    cloud,
		notifSvc: notifSvc,
	}
}

// Generate debits the configured cost, runs the task to completion, stores
// the image, and returns the finished request. Insufficient funds surface
// before any provider work starts.
func (s *GenerationService) Generate(ctx context.Context, p GenerateParams) (*models.GenerationRequest, error) {
	cost := s.cfg.TokensPerImage
	requestID := uuid.NewString()
	err := s.ledger.Debit(p.UserID, cost, "Image generation", map[string]interface{}{
		"request_id": requestID,
	})
	if err != nil {
		return nil, err
	}
	gen := &models.GenerationRequest{
		RequestID:      requestID,
		UserID:         p.UserID,
		CharacterID:    p.CharacterID,
		Prompt:         p.Prompt,
		NegativePrompt: p.NegativePrompt,
		Width:          p.Width,
		Height:         p.Height,
		Status:         domain.GenerationStatusPending,
		TokenCost:      cost,
	}
	if err := s.genRepo.Create(gen); err != nil {
		s.refund(gen)
		return nil, err
	}

	taskID, err := s.provider.CreateTask(ctx, novita.TaskRequest{
		Prompt:         p.Prompt,
		NegativePrompt: p.NegativePrompt,
		Width:          p.Width,
		Height:         p.Height,
	})
	if err != nil {
		s.fail(gen, err)
		return gen, fmt.Errorf("create generation task: %w", err)
	}
	gen.ProviderTaskID = taskID
	gen.Status = domain.GenerationStatusRunning
	if err := s.genRepo.Update(gen); err != nil {
		log.Printf("[generation] update %s: %v", requestID, err)
	}

	providerURL, err := s.provider.WaitForResult(ctx, taskID)
	if err != nil {
		s.fail(gen, err)
		return gen, fmt.Errorf("generation task: %w", err)
	}
	imageURL, thumbURL := providerURL, providerURL
	if data, fetchErr := s.provider.FetchImage(ctx, providerURL); fetchErr == nil {
		// Re-host on Cloudinary; keep the provider URL if the upload fails,
		// the user has already paid for the image.
		if url, thumb, upErr := s.cloud.UploadImage(ctx, bytes.NewReader(data), "generations", requestID); upErr == nil {
			imageURL, thumbURL = url, thumb
		} else {
			log.Printf("[generation] cloudinary upload %s: %v", requestID, upErr)
		}
	} else {
		log.Printf("[generation] fetch image %s: %v", requestID, fetchErr)
	}

	gen.ImageURL = imageURL
	gen.ThumbnailURL = thumbURL
	gen.Status = domain.GenerationStatusCompleted
	gen.Error = ""
	if err := s.genRepo.Update(gen); err != nil {
		return gen, err
	}
	return gen, nil
}

// fail marks the request failed and compensates the debit.
func (s *GenerationService) fail(gen *models.GenerationRequest, cause error) {
	gen.Status = domain.GenerationStatusFailed
	gen.Error = cause.Error()
	if err := s.genRepo.Update(gen); err != nil {
		log.Printf("[generation] mark failed %s: %v", gen.RequestID, err)
	}
	s.refund(gen)
	if s.notifSvc != nil {
		_ = s.notifSvc.NotifyGenerationFailed(gen.UserID, gen.RequestID, gen.TokenCost)
	}
}

// refund credits back the debited cost, keyed by the request id so a crashed
// retry cannot refund twice.
func (s *GenerationService) refund(gen *models.GenerationRequest) {
	err := s.ledger.Credit(gen.UserID, gen.TokenCost, domain.TxTypeRefund,
		"Refund for failed generation",
		map[string]interface{}{"request_id": gen.RequestID},
		"refund:"+gen.RequestID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCredit) {
			return
		}
		log.Printf("[generation] refund %s: %v", gen.RequestID, err)
		return
	}
	gen.Status = domain.GenerationStatusRefunded
	if err := s.genRepo.Update(gen); err != nil {
		log.Printf("[generation] mark refunded %s: %v", gen.RequestID, err)
	}
}
