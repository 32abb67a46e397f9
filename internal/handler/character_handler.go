package handler

import (
	"errors"
	"net/http"
	"strconv"

	"velora/internal/domain"
	"velora/internal/middleware"
	"velora/internal/models"
	"velora/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CharacterHandler struct {
	characterRepo *repository.CharacterRepository
}

func NewCharacterHandler(characterRepo *repository.CharacterRepository) *CharacterHandler {
	return &CharacterHandler{characterRepo: characterRepo}
}

// List returns the public character catalog.
func (h *CharacterHandler) List(c *gin.Context) {
	chars, err := h.characterRepo.ListPublic()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "characters unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"characters": chars})
}

// Get returns one public character by slug.
func (h *CharacterHandler) Get(c *gin.Context) {
	char, err := h.characterRepo.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if char.Visibility != domain.VisibilityPublic {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"character": char})
}

func (h *CharacterHandler) AddFavorite(c *gin.Context) {
	userID := middleware.GetUserID(c)
	characterID, err := strconv.ParseUint(c.Param("character_id"), 10, 64)
	if err != nil || characterID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid character_id"})
		return
	}
	if _, err := h.characterRepo.GetByID(uint(characterID)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return
	}
	if err := h.characterRepo.AddFavorite(userID, uint(characterID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "favorite failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CharacterHandler) RemoveFavorite(c *gin.Context) {
	userID := middleware.GetUserID(c)
	characterID, err := strconv.ParseUint(c.Param("character_id"), 10, 64)
	if err != nil || characterID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid character_id"})
		return
	}
	if err := h.characterRepo.RemoveFavorite(userID, uint(characterID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unfavorite failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CharacterHandler) ListFavorites(c *gin.Context) {
	userID := middleware.GetUserID(c)
	favs, err := h.characterRepo.ListFavorites(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "favorites unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favs})
}

// Admin CRUD below. AdminList includes hidden characters and the persona
// prompt, which the public endpoints never expose.

type CharacterRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	Slug       string `json:"slug" binding:"required,max=120"`
	Tagline    string `json:"tagline" binding:"max=255"`
	Persona    string `json:"persona" binding:"required"`
	AvatarURL  string `json:"avatar_url" binding:"omitempty,url,max=512"`
	CoverURL   string `json:"cover_url" binding:"omitempty,url,max=512"`
	Tags       string `json:"tags" binding:"max=255"`
	Visibility string `json:"visibility" binding:"omitempty,oneof=PUBLIC HIDDEN"`
	SortOrder  int    `json:"sort_order"`
}

type adminCharacter struct {
	models.Character
	Persona string `json:"persona"`
}

func (h *CharacterHandler) AdminList(c *gin.Context) {
	chars, err := h.characterRepo.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "characters unavailable"})
		return
	}
	out := make([]adminCharacter, 0, len(chars))
	for _, ch := range chars {
		out = append(out, adminCharacter{Character: ch, Persona: ch.Persona})
	}
	c.JSON(http.StatusOK, gin.H{"characters": out})
}

func (h *CharacterHandler) AdminCreate(c *gin.Context) {
	var req CharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Visibility == "" {
		req.Visibility = domain.VisibilityPublic
	}
	char := &models.Character{
		Name:       req.Name,
		Slug:       req.Slug,
		Tagline:    req.Tagline,
		Persona:    req.Persona,
		AvatarURL:  req.AvatarURL,
		CoverURL:   req.CoverURL,
		Tags:       req.Tags,
		Visibility: req.Visibility,
		SortOrder:  req.SortOrder,
	}
	if err := h.characterRepo.Create(char); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"character": adminCharacter{Character: *char, Persona: char.Persona}})
}

func (h *CharacterHandler) AdminUpdate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	char, err := h.characterRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return
	}
	var req CharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Visibility == "" {
		req.Visibility = char.Visibility
	}
	char.Name = req.Name
	char.Slug = req.Slug
	char.Tagline = req.Tagline
	char.Persona = req.Persona
	char.AvatarURL = req.AvatarURL
	char.CoverURL = req.CoverURL
	char.Tags = req.Tags
	char.Visibility = req.Visibility
	char.SortOrder = req.SortOrder
	if err := h.characterRepo.Update(char); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"character": adminCharacter{Character: *char, Persona: char.Persona}})
}

func (h *CharacterHandler) AdminDelete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.characterRepo.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
