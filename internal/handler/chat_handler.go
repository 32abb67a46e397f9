package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"velora/internal/middleware"
	"velora/internal/models"
	"velora/internal/repository"
	"velora/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ChatHandler struct {
	chatRepo      *repository.ChatRepository
	characterRepo *repository.CharacterRepository
	chatSvc       *service.ChatService
}

func NewChatHandler(chatRepo *repository.ChatRepository, characterRepo *repository.CharacterRepository, chatSvc *service.ChatService) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo, characterRepo: characterRepo, chatSvc: chatSvc}
}

type CreateSessionRequest struct {
	CharacterID uint   `json:"character_id" binding:"required"`
	Title       string `json:"title" binding:"max=255"`
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	char, err := h.characterRepo.GetByID(req.CharacterID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		return
	}
	title := req.Title
	if title == "" {
		title = "Chat with " + char.Name
	}
	session := &models.ChatSession{
		UserID:      userID,
		CharacterID: char.ID,
		Title:       title,
	}
	if err := h.chatRepo.CreateSession(session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session create failed"})
		return
	}
	session.Character = *char
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	sessions, err := h.chatRepo.ListSessionsByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sessions unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	userID := middleware.GetUserID(c)
	session, ok := h.ownedSession(c, userID)
	if !ok {
		return
	}
	if err := h.chatRepo.DeleteSession(session.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID := middleware.GetUserID(c)
	session, ok := h.ownedSession(c, userID)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	msgs, total, err := h.chatRepo.ListMessages(session.ID, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "messages unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs, "total": total})
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=4000"`
}

// SendMessage is the REST path for chat (the WS path is in chat_ws.go).
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	session, ok := h.ownedSession(c, userID)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userMsg, reply, err := h.chatSvc.SendMessage(c.Request.Context(), session, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientBalance), errors.Is(err, repository.ErrNoBalanceRecord):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "not enough tokens", "top_up": true})
		default:
			log.Printf("[chat] session=%d err=%v", session.ID, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "reply failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": userMsg, "reply": reply})
}

func (h *ChatHandler) ownedSession(c *gin.Context, userID uint) (*models.ChatSession, bool) {
	sessionID, err := strconv.ParseUint(c.Param("session_id"), 10, 64)
	if err != nil || sessionID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
		return nil, false
	}
	session, err := h.chatRepo.GetSessionByID(uint(sessionID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return nil, false
	}
	if session.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return session, true
}
