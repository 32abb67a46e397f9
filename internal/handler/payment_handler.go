package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"velora/config"
	"velora/internal/domain"
	"velora/internal/middleware"
	"velora/internal/models"
	"velora/internal/repository"
	"velora/internal/service"
	"velora/pkg/payment"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	cfg         *config.Config
	paymentRepo *repository.PaymentRepository
	packageRepo *repository.PackageRepository
	ledger      *repository.LedgerRepository
	notifSvc    *service.NotificationService
	provider    payment.Provider
}

func NewPaymentHandler(cfg *config.Config, paymentRepo *repository.PaymentRepository, packageRepo *repository.PackageRepository, ledger *repository.LedgerRepository, notifSvc *service.NotificationService, provider payment.Provider) *PaymentHandler {
	return &PaymentHandler{cfg: cfg, paymentRepo: paymentRepo, packageRepo: packageRepo, ledger: ledger, notifSvc: notifSvc, provider: provider}
}

type CheckoutRequest struct {
	PackageID uint `json:"package_id" binding:"required"`
}

// ListPackages returns the active pricing catalog.
func (h *PaymentHandler) ListPackages(c *gin.Context) {
	packages, err := h.packageRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "packages unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

// Checkout creates a pending payment and a provider checkout session, and
// returns the redirect URL. Tokens are credited only by the webhook.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pkg, err := h.packageRepo.GetByID(req.PackageID)
	if err != nil || !pkg.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
		return
	}
	resp, err := h.provider.CreateCheckout(c.Request.Context(), payment.CheckoutRequest{
		UserID:      userID,
		AmountCents: pkg.PriceCents,
		Currency:    pkg.Currency,
		Description: pkg.Name + " token package",
		Metadata: map[string]string{
			"package_id": strconv.FormatUint(uint64(pkg.ID), 10),
		},
		ExpiresIn:  h.cfg.Payment.PaymentExpiry,
		SuccessURL: h.cfg.Payment.SuccessURL,
		CancelURL:  h.cfg.Payment.CancelURL,
	})
	if err != nil {
		log.Printf("[payment] checkout failed: user=%d package=%d err=%v", userID, pkg.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "checkout unavailable"})
		return
	}
	meta, _ := json.Marshal(map[string]interface{}{"package_name": pkg.Name})
	expires := resp.ExpiresAt
	p := &models.Payment{
		UserID:      userID,
		PackageID:   pkg.ID,
		Tokens:      pkg.Tokens,
		AmountCents: pkg.PriceCents,
		Currency:    pkg.Currency,
		Provider:    h.provider.Name(),
		ProviderRef: resp.Reference,
		Status:      domain.PaymentStatusPending,
		Metadata:    string(meta),
		ExpiresAt:   &expires,
	}
	if err := h.paymentRepo.Create(p); err != nil {
		log.Printf("[payment] record create failed: ref=%s err=%v", resp.Reference, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment record failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment_id":   p.ID,
		"checkout_url": resp.CheckoutURL,
		"expires_at":   expires.Format(time.RFC3339),
	})
}

// Verify asks the provider whether a pending payment was actually paid.
// Fallback for when webhook delivery is in doubt; the success page calls it
// so the user is not stuck waiting on a lost callback. Crediting goes through
// the same idempotent path as the webhook.
func (h *PaymentHandler) Verify(c *gin.Context) {
	userID := middleware.GetUserID(c)
	paymentID, err := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	p, err := h.paymentRepo.GetByID(uint(paymentID))
	if err != nil || p == nil || p.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	if p.Status == domain.PaymentStatusCompleted {
		c.JSON(http.StatusOK, gin.H{"status": p.Status, "tokens": p.Tokens})
		return
	}
	paid, err := h.provider.VerifyPayment(c.Request.Context(), p.ProviderRef)
	if err != nil {
		log.Printf("[payment] verify failed: ref=%s err=%v", p.ProviderRef, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification unavailable"})
		return
	}
	if !paid {
		c.JSON(http.StatusOK, gin.H{"status": p.Status})
		return
	}
	if err := completePayment(h.paymentRepo, h.ledger, h.notifSvc, p); err != nil {
		log.Printf("[payment] completion failed: ref=%s err=%v", p.ProviderRef, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "completion failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": p.Status, "tokens": p.Tokens})
}

// ListMine returns the user's payment history.
func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	payments, total, err := h.paymentRepo.ListByUser(userID, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payments unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "payments": payments, "total": total})
}
