package handler

import (
	"errors"
	"net/http"
	"strconv"

	"velora/internal/models"
	"velora/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CollectionHandler struct {
	collectionRepo *repository.CollectionRepository
}

func NewCollectionHandler(collectionRepo *repository.CollectionRepository) *CollectionHandler {
	return &CollectionHandler{collectionRepo: collectionRepo}
}

func (h *CollectionHandler) List(c *gin.Context) {
	collections, err := h.collectionRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "collections unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

func (h *CollectionHandler) Get(c *gin.Context) {
	col, err := h.collectionRepo.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if !col.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": col})
}

type CollectionRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"required,max=120"`
	Description string `json:"description" binding:"max=512"`
	CoverURL    string `json:"cover_url" binding:"omitempty,url,max=512"`
	SortOrder   int    `json:"sort_order"`
	Active      bool   `json:"active"`
}

type CollectionImageRequest struct {
	ImageURL     string `json:"image_url" binding:"required,url,max=512"`
	ThumbnailURL string `json:"thumbnail_url" binding:"omitempty,url,max=512"`
	Caption      string `json:"caption" binding:"max=255"`
	SortOrder    int    `json:"sort_order"`
}

func (h *CollectionHandler) AdminList(c *gin.Context) {
	collections, err := h.collectionRepo.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "collections unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

func (h *CollectionHandler) AdminCreate(c *gin.Context) {
	var req CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	col := &models.Collection{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		SortOrder:   req.SortOrder,
		Active:      req.Active,
	}
	if err := h.collectionRepo.Create(col); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"collection": col})
}

func (h *CollectionHandler) AdminUpdate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	col, err := h.collectionRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return
	}
	var req CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	col.Name = req.Name
	col.Slug = req.Slug
	col.Description = req.Description
	col.CoverURL = req.CoverURL
	col.SortOrder = req.SortOrder
	col.Active = req.Active
	if err := h.collectionRepo.Update(col); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": col})
}

func (h *CollectionHandler) AdminDelete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.collectionRepo.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CollectionHandler) AdminAddImage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if _, err := h.collectionRepo.GetByID(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
		return
	}
	var req CollectionImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	img := &models.CollectionImage{
		CollectionID: uint(id),
		ImageURL:     req.ImageURL,
		ThumbnailURL: req.ThumbnailURL,
		Caption:      req.Caption,
		SortOrder:    req.SortOrder,
	}
	if err := h.collectionRepo.AddImage(img); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "add image failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"image": img})
}

func (h *CollectionHandler) AdminRemoveImage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	imageID, err := strconv.ParseUint(c.Param("image_id"), 10, 64)
	if err != nil || imageID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return
	}
	if err := h.collectionRepo.RemoveImage(uint(id), uint(imageID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "remove image failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
