package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"velora/internal/middleware"
	"velora/internal/repository"
	"velora/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GenerationHandler struct {
	svc     *service.GenerationService
	genRepo *repository.GenerationRepository
}

func NewGenerationHandler(svc *service.GenerationService, genRepo *repository.GenerationRepository) *GenerationHandler {
	return &GenerationHandler{svc: svc, genRepo: genRepo}
}

type GenerateRequest struct {
	Prompt         string `json:"prompt" binding:"required,min=3,max=2000"`
	NegativePrompt string `json:"negative_prompt" binding:"max=2000"`
	CharacterID    *uint  `json:"character_id"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

// Create runs one paid generation. Insufficient tokens block the job before
// any provider work starts and respond with a top-up prompt.
func (h *GenerationHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gen, err := h.svc.Generate(c.Request.Context(), service.GenerateParams{
		UserID:         userID,
		CharacterID:    req.CharacterID,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Width:          req.Width,
		Height:         req.Height,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientBalance), errors.Is(err, repository.ErrNoBalanceRecord):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "not enough tokens", "top_up": true})
		default:
			log.Printf("[generation] user=%d err=%v", userID, err)
			if gen != nil {
				// Debit was refunded; report the failed request.
				c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed", "generation": gen})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "generation failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"generation": gen})
}

// Get returns one generation by its request id, owner only.
func (h *GenerationHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	gen, err := h.genRepo.GetByRequestID(c.Param("request_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "generation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if gen.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"generation": gen})
}

// ListMine returns the user's generation history, newest first.
func (h *GenerationHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	gens, total, err := h.genRepo.ListByUser(userID, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generations unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "generations": gens, "total": total})
}
