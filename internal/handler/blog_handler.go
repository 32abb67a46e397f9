package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"velora/internal/models"
	"velora/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BlogHandler struct {
	blogRepo *repository.BlogRepository
}

func NewBlogHandler(blogRepo *repository.BlogRepository) *BlogHandler {
	return &BlogHandler{blogRepo: blogRepo}
}

func (h *BlogHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	posts, total, err := h.blogRepo.ListPublished(limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "posts unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "total": total})
}

func (h *BlogHandler) Get(c *gin.Context) {
	post, err := h.blogRepo.GetBySlug(c.Param("slug"))
	if err != nil || !post.Published {
		if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// Admin CRUD below; mounted under the admin-only group.

type BlogPostRequest struct {
	Title     string `json:"title" binding:"required,max=255"`
	Slug      string `json:"slug" binding:"required,max=255"`
	Excerpt   string `json:"excerpt" binding:"max=512"`
	Content   string `json:"content"`
	CoverURL  string `json:"cover_url" binding:"omitempty,url,max=512"`
	Published bool   `json:"published"`
}

func (h *BlogHandler) AdminList(c *gin.Context) {
	posts, err := h.blogRepo.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "posts unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *BlogHandler) AdminCreate(c *gin.Context) {
	var req BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	post := &models.BlogPost{
		Title:     req.Title,
		Slug:      req.Slug,
		Excerpt:   req.Excerpt,
		Content:   req.Content,
		CoverURL:  req.CoverURL,
		Published: req.Published,
	}
	if req.Published {
		now := time.Now()
		post.PublishedAt = &now
	}
	if err := h.blogRepo.Create(post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (h *BlogHandler) AdminUpdate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	post, err := h.blogRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	var req BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	wasPublished := post.Published
	post.Title = req.Title
	post.Slug = req.Slug
	post.Excerpt = req.Excerpt
	post.Content = req.Content
	post.CoverURL = req.CoverURL
	post.Published = req.Published
	if req.Published && !wasPublished {
		now := time.Now()
		post.PublishedAt = &now
	}
	if err := h.blogRepo.Update(post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *BlogHandler) AdminDelete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.blogRepo.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
