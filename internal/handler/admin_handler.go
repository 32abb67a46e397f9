package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"velora/internal/domain"
	"velora/internal/middleware"
	"velora/internal/models"
	"velora/internal/repository"
	"velora/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the back office: dashboard stats, user management,
// manual token grants, token packages and the audit log.
type AdminHandler struct {
	userRepo        *repository.UserRepository
	paymentRepo     *repository.PaymentRepository
	generationRepo  *repository.GenerationRepository
	ledgerRepo      *repository.LedgerRepository
	packageRepo     *repository.PackageRepository
	auditRepo       *repository.AuditLogRepository
	notificationSvc *service.NotificationService
}

func NewAdminHandler(
	userRepo *repository.UserRepository,
	paymentRepo *repository.PaymentRepository,
	generationRepo *repository.GenerationRepository,
	ledgerRepo *repository.LedgerRepository,
	packageRepo *repository.PackageRepository,
	auditRepo *repository.AuditLogRepository,
	notificationSvc *service.NotificationService,
) *AdminHandler {
	return &AdminHandler{
		userRepo:        userRepo,
		paymentRepo:     paymentRepo,
		generationRepo:  generationRepo,
		ledgerRepo:      ledgerRepo,
		packageRepo:     packageRepo,
		auditRepo:       auditRepo,
		notificationSvc: notificationSvc,
	}
}

// Stats aggregates the dashboard numbers: user count, completed revenue,
// tokens sold and spent, finished generations.
func (h *AdminHandler) Stats(c *gin.Context) {
	users, err := h.userRepo.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	revenue, err := h.paymentRepo.CompletedRevenueCents()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	generations, err := h.generationRepo.CountCompleted()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	tokensSold, err := h.ledgerRepo.TotalByType(domain.TxTypePurchase)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	tokensSpent, err := h.ledgerRepo.TotalByType(domain.TxTypeUsage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":                 users,
		"revenue_cents":         revenue,
		"tokens_sold":           tokensSold,
		"tokens_spent":          tokensSpent,
		"completed_generations": generations,
	})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	users, total, err := h.userRepo.List(limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "users unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	u, err := h.userRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	balance, err := h.ledgerRepo.GetBalance(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "token_balance": balance})
}

type GrantBonusRequest struct {
	UserID         uint   `json:"user_id" binding:"required"`
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	Reason         string `json:"reason" binding:"required,max=255"`
	IdempotencyKey string `json:"idempotency_key" binding:"max=191"`
}

// GrantBonus credits tokens to a user from the back office. Passing an
// idempotency key makes a retried grant a no-op instead of a double credit.
func (h *AdminHandler) GrantBonus(c *gin.Context) {
	var req GrantBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.userRepo.GetByID(req.UserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	adminID := middleware.GetUserID(c)
	meta := map[string]interface{}{"granted_by": adminID, "reason": req.Reason}
	err := h.ledgerRepo.Credit(req.UserID, req.Amount, domain.TxTypeBonus, req.Reason, meta, req.IdempotencyKey)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCredit) {
			c.JSON(http.StatusOK, gin.H{"success": true, "duplicate": true})
			return
		}
		log.Printf("[admin] grant bonus to user %d failed: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "grant failed"})
		return
	}
	if err := h.notificationSvc.NotifyBonusGranted(req.UserID, req.Amount, req.Reason); err != nil {
		log.Printf("[admin] bonus notification for user %d failed: %v", req.UserID, err)
	}
	h.audit(c, adminID, "grant_bonus", "user", strconv.FormatUint(uint64(req.UserID), 10))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	logs, total, err := h.auditRepo.List(limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audit logs unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": total})
}

type TokenPackageRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	Tokens     int64  `json:"tokens" binding:"required,gt=0"`
	PriceCents int64  `json:"price_cents" binding:"required,gt=0"`
	Currency   string `json:"currency" binding:"omitempty,len=3"`
	Active     bool   `json:"active"`
	SortOrder  int    `json:"sort_order"`
}

func (h *AdminHandler) ListPackages(c *gin.Context) {
	packages, err := h.packageRepo.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "packages unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

func (h *AdminHandler) CreatePackage(c *gin.Context) {
	var req TokenPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	p := &models.TokenPackage{
		Name:       req.Name,
		Tokens:     req.Tokens,
		PriceCents: req.PriceCents,
		Currency:   req.Currency,
		Active:     req.Active,
		SortOrder:  req.SortOrder,
	}
	if err := h.packageRepo.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	h.audit(c, middleware.GetUserID(c), "create_package", "token_package", strconv.FormatUint(uint64(p.ID), 10))
	c.JSON(http.StatusCreated, gin.H{"package": p})
}

func (h *AdminHandler) UpdatePackage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := h.packageRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
		return
	}
	var req TokenPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	p.Name = req.Name
	p.Tokens = req.Tokens
	p.PriceCents = req.PriceCents
	p.Currency = req.Currency
	p.Active = req.Active
	p.SortOrder = req.SortOrder
	if err := h.packageRepo.Update(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.audit(c, middleware.GetUserID(c), "update_package", "token_package", c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"package": p})
}

func (h *AdminHandler) DeletePackage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.packageRepo.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	h.audit(c, middleware.GetUserID(c), "delete_package", "token_package", c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AdminHandler) audit(c *gin.Context, adminID uint, action, resource, resourceID string) {
	entry := &models.AuditLog{
		UserID:     &adminID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
	if err := h.auditRepo.Create(entry); err != nil {
		log.Printf("[admin] audit log write failed: %v", err)
	}
}
