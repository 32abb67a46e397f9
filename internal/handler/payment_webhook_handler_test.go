package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"velora/config"
	"velora/internal/domain"
	"velora/internal/models"
	"velora/internal/repository"
	"velora/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.TokenBalance{},
		&models.TokenTransaction{},
		&models.TokenPackage{},
		&models.Payment{},
		&models.Notification{},
		&models.AuditLog{},
	))
	return db
}

func newWebhookRouter(t *testing.T, db *gorm.DB, secret string) (*gin.Engine, *repository.LedgerRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Payment.WebhookSecret = secret
	ledger := repository.NewLedgerRepository(db)
	notifSvc := service.NewNotificationService(repository.NewNotificationRepository(db))
	h := NewPaymentWebhookHandler(repository.NewPaymentRepository(db), ledger, repository.NewAuditLogRepository(db), notifSvc, cfg)
	r := gin.New()
	r.POST("/webhooks/payment", h.Handle)
	return r, ledger
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookCompletesAndCreditsOnce(t *testing.T) {
	db := newHandlerTestDB(t)
	r, ledger := newWebhookRouter(t, db, "")

	payment := &models.Payment{
		UserID:      1,
		PackageID:   1,
		Tokens:      250,
		AmountCents: 999,
		Provider:    "stripe",
		ProviderRef: "cs_test_1",
		Status:      domain.PaymentStatusPending,
	}
	require.NoError(t, db.Create(payment).Error)

	body := []byte(`{"reference": "cs_test_1", "status": "COMPLETED"}`)
	w := postWebhook(r, body, "")
	assert.Equal(t, http.StatusOK, w.Code)

	balance, err := ledger.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)

	var got models.Payment
	require.NoError(t, db.Where("provider_ref = ?", "cs_test_1").First(&got).Error)
	assert.Equal(t, domain.PaymentStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	// the provider redelivers: acknowledged, but not credited again
	w = postWebhook(r, body, "")
	assert.Equal(t, http.StatusOK, w.Code)

	balance, err = ledger.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance, "replayed webhook must not double-credit")

	var txCount int64
	require.NoError(t, db.Model(&models.TokenTransaction{}).Where("user_id = ?", 1).Count(&txCount).Error)
	assert.Equal(t, int64(1), txCount)
}

func TestWebhookSignature(t *testing.T) {
	db := newHandlerTestDB(t)
	r, _ := newWebhookRouter(t, db, "whsec_test")

	body := []byte(`{"reference": "cs_test_2", "status": "COMPLETED"}`)

	w := postWebhook(r, body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing signature rejected")

	w = postWebhook(r, body, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "bad signature rejected")

	w = postWebhook(r, body, sign("whsec_test", body))
	assert.Equal(t, http.StatusOK, w.Code, "valid signature accepted even for unknown refs")
}

func TestWebhookFailureMarksPayment(t *testing.T) {
	db := newHandlerTestDB(t)
	r, ledger := newWebhookRouter(t, db, "")

	payment := &models.Payment{
		UserID:      2,
		PackageID:   1,
		Tokens:      100,
		AmountCents: 499,
		Provider:    "stripe",
		ProviderRef: "cs_test_3",
		Status:      domain.PaymentStatusPending,
	}
	require.NoError(t, db.Create(payment).Error)

	w := postWebhook(r, []byte(`{"reference": "cs_test_3", "status": "FAILED"}`), "")
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Payment
	require.NoError(t, db.Where("provider_ref = ?", "cs_test_3").First(&got).Error)
	assert.Equal(t, domain.PaymentStatusFailed, got.Status)

	balance, err := ledger.GetBalance(2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance, "failed payments never credit tokens")

	// a failed notice arriving after completion does not downgrade the status
	got.Status = domain.PaymentStatusCompleted
	require.NoError(t, db.Save(&got).Error)
	w = postWebhook(r, []byte(`{"reference": "cs_test_3", "status": "FAILED"}`), "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.Where("provider_ref = ?", "cs_test_3").First(&got).Error)
	assert.Equal(t, domain.PaymentStatusCompleted, got.Status)
}

func TestWebhookValidation(t *testing.T) {
	db := newHandlerTestDB(t)
	r, _ := newWebhookRouter(t, db, "")

	w := postWebhook(r, []byte(`not json`), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postWebhook(r, []byte(`{"status": "COMPLETED"}`), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown references are acknowledged so the provider stops retrying
	w = postWebhook(r, []byte(`{"reference": "cs_unknown", "status": "COMPLETED"}`), "")
	assert.Equal(t, http.StatusOK, w.Code)
}
