package handler

import (
	"net/http"
	"strconv"

	"velora/internal/models"
	"velora/internal/repository"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves the public, unauthenticated content surface:
// banners, FAQs, prompt suggestions, and site settings.
type ContentHandler struct {
	bannerRepo     *repository.BannerRepository
	faqRepo        *repository.FAQRepository
	suggestionRepo *repository.SuggestionRepository
	settingRepo    *repository.SettingRepository
}

func NewContentHandler(bannerRepo *repository.BannerRepository, faqRepo *repository.FAQRepository, suggestionRepo *repository.SuggestionRepository, settingRepo *repository.SettingRepository) *ContentHandler {
	return &ContentHandler{
		bannerRepo:     bannerRepo,
		faqRepo:        faqRepo,
		suggestionRepo: suggestionRepo,
		settingRepo:    settingRepo,
	}
}

func (h *ContentHandler) ListBanners(c *gin.Context) {
	banners, err := h.bannerRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "banners unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"banners": banners})
}

func (h *ContentHandler) ListFAQs(c *gin.Context) {
	faqs, err := h.faqRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "faqs unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"faqs": faqs})
}

func (h *ContentHandler) ListSuggestions(c *gin.Context) {
	suggestions, err := h.suggestionRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "suggestions unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// GetSettings returns all site settings as a flat key/value map.
func (h *ContentHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings unavailable"})
		return
	}
	out := make(map[string]string, len(settings))
	for _, s := range settings {
		out[s.Key] = s.Value
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// Admin CRUD below; mounted under the admin-only group.

type BannerRequest struct {
	Title     string `json:"title" binding:"required,max=255"`
	ImageURL  string `json:"image_url" binding:"required,url,max=512"`
	LinkURL   string `json:"link_url" binding:"omitempty,url,max=512"`
	Active    bool   `json:"active"`
	SortOrder int    `json:"sort_order"`
}

func (h *ContentHandler) AdminListBanners(c *gin.Context) {
	banners, err := h.bannerRepo.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "banners unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"banners": banners})
}

func (h *ContentHandler) AdminCreateBanner(c *gin.Context) {
	var req BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b := &models.Banner{
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
		Active:    req.Active,
		SortOrder: req.SortOrder,
	}
	if err := h.bannerRepo.Create(b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"banner": b})
}

func (h *ContentHandler) AdminUpdateBanner(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	b, err := h.bannerRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "banner not found"})
		return
	}
	var req BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b.Title = req.Title
	b.ImageURL = req.ImageURL
	b.LinkURL = req.LinkURL
	b.Active = req.Active
	b.SortOrder = req.SortOrder
	if err := h.bannerRepo.Update(b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"banner": b})
}

func (h *ContentHandler) AdminDeleteBanner(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.bannerRepo.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type FAQRequest struct {
	Question  string `json:"question" binding:"required,max=512"`
	Answer    string `json:"answer" binding:"required"`
	Category  string `json:"category" binding:"max=100"`
	Active    bool   `json:"active"`
	SortOrder int    `json:"sort_order"`
}

func (h *ContentHandler) AdminListFAQs(c *gin.Context) {
	faqs, err := h.faqRepo.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "faqs unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"faqs": faqs})
}

func (h *ContentHandler) AdminCreateFAQ(c *gin.Context) {
	var req FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f := &models.FAQ{
		Question:  req.Question,
		Answer:    req.Answer,
		Category:  req.Category,
		Active:    req.Active,
		SortOrder: req.SortOrder,
	}
	if err := h.faqRepo.Create(f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"faq": f})
}

func (h *ContentHandler) AdminUpdateFAQ(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	f, err := h.faqRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "faq not found"})
		return
	}
	var req FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f.Question = req.Question
	f.Answer = req.Answer
	f.Category = req.Category
	f.Active = req.Active
	f.SortOrder = req.SortOrder
	if err := h.faqRepo.Update(f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"faq": f})
}

func (h *ContentHandler) AdminDeleteFAQ(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.faqRepo.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type SuggestionRequest struct {
	Prompt    string `json:"prompt" binding:"required,max=512"`
	Category  string `json:"category" binding:"max=100"`
	Active    bool   `json:"active"`
	SortOrder int    `json:"sort_order"`
}

func (h *ContentHandler) AdminListSuggestions(c *gin.Context) {
	suggestions, err := h.suggestionRepo.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "suggestions unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *ContentHandler) AdminCreateSuggestion(c *gin.Context) {
	var req SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := &models.ImageSuggestion{
		Prompt:    req.Prompt,
		Category:  req.Category,
		Active:    req.Active,
		SortOrder: req.SortOrder,
	}
	if err := h.suggestionRepo.Create(s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"suggestion": s})
}

func (h *ContentHandler) AdminUpdateSuggestion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	s, err := h.suggestionRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "suggestion not found"})
		return
	}
	var req SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.Prompt = req.Prompt
	s.Category = req.Category
	s.Active = req.Active
	s.SortOrder = req.SortOrder
	if err := h.suggestionRepo.Update(s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": s})
}

func (h *ContentHandler) AdminDeleteSuggestion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.suggestionRepo.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminSetSettings upserts a batch of site settings from a key/value map.
func (h *ContentHandler) AdminSetSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings provided"})
		return
	}
	for key, value := range req {
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty setting key"})
			return
		}
		if err := h.settingRepo.Set(key, value); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "settings update failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
