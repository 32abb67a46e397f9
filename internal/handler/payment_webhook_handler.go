package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"velora/config"
	"velora/internal/domain"
	"velora/internal/models"
	"velora/internal/repository"
	"velora/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentWebhookHandler struct {
	paymentRepo *repository.PaymentRepository
	ledger      *repository.LedgerRepository
	auditRepo   *repository.AuditLogRepository
	notifSvc    *service.NotificationService
	cfg         *config.Config
}

func NewPaymentWebhookHandler(paymentRepo *repository.PaymentRepository, ledger *repository.LedgerRepository, auditRepo *repository.AuditLogRepository, notifSvc *service.NotificationService, cfg *config.Config) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{paymentRepo: paymentRepo, ledger: ledger, auditRepo: auditRepo, notifSvc: notifSvc, cfg: cfg}
}

// Handle processes provider completion callbacks. Expects JSON:
// { "reference": "...", "status": "COMPLETED" } and optional
// X-Webhook-Signature (HMAC-SHA256 of the raw body). The token credit is
// keyed by the provider reference, so redelivered webhooks acknowledge
// without crediting twice.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.cfg.Payment.WebhookSecret != "" {
		sig := c.GetHeader("X-Webhook-Signature")
		if !h.verifySignature(body, sig) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}
	var payload struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if payload.Reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference required"})
		return
	}
	p, err := h.paymentRepo.GetByProviderRef(payload.Reference)
	if err != nil || p == nil {
		// Unknown reference: acknowledge so the provider stops retrying.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	status := strings.ToUpper(payload.Status)
	switch status {
	case domain.PaymentStatusCompleted:
		if !h.complete(c, p) {
			return
		}
	case domain.PaymentStatusFailed, domain.PaymentStatusExpired:
		if p.Status == domain.PaymentStatusPending {
			p.Status = status
			if err := h.paymentRepo.Update(p); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
				return
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// complete marks the payment as completed and credits the purchased tokens.
// Returns false when it has already written an error response.
func (h *PaymentWebhookHandler) complete(c *gin.Context, p *models.Payment) bool {
	if err := completePayment(h.paymentRepo, h.ledger, h.notifSvc, p); err != nil {
		log.Printf("[webhook] completion failed: ref=%s err=%v", p.ProviderRef, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "completion failed"})
		return false
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &p.UserID,
		Action:     "payment_completed",
		Resource:   "payment",
		ResourceID: p.ProviderRef,
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	return true
}

// completePayment marks p completed and applies the token credit. The credit
// is idempotent on the provider reference, so the webhook and the checkout
// verification fallback can both call it for the same payment; whichever runs
// second is a no-op.
func completePayment(paymentRepo *repository.PaymentRepository, ledger *repository.LedgerRepository, notifSvc *service.NotificationService, p *models.Payment) error {
	if p.Status != domain.PaymentStatusCompleted {
		now := time.Now()
		p.Status = domain.PaymentStatusCompleted
		p.CompletedAt = &now
		if err := paymentRepo.Update(p); err != nil {
			return err
		}
	}
	err := ledger.Credit(p.UserID, p.Tokens, domain.TxTypePurchase,
		"Token package purchase",
		map[string]interface{}{"payment_id": p.ID, "package_id": p.PackageID},
		"payment:"+p.ProviderRef)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCredit) {
			return nil
		}
		return err
	}
	_ = notifSvc.NotifyPaymentConfirmed(p.UserID, p.Tokens, p.ProviderRef)
	return nil
}

func (h *PaymentWebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.cfg.Payment.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
