package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"velora/config"
	"velora/internal/domain"
	"velora/internal/models"
	"velora/internal/repository"
	"velora/internal/service"
	"velora/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePaymentProvider struct {
	paid      bool
	verifyErr error
	verified  []string
}

func (f *fakePaymentProvider) Name() string { return "fake" }

func (f *fakePaymentProvider) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutResponse, error) {
	return nil, errors.New("not used")
}

func (f *fakePaymentProvider) VerifyPayment(ctx context.Context, reference string) (bool, error) {
	f.verified = append(f.verified, reference)
	return f.paid, f.verifyErr
}

func newVerifyRouter(t *testing.T, db *gorm.DB, userID uint, provider payment.Provider) (*gin.Engine, *repository.LedgerRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ledger := repository.NewLedgerRepository(db)
	notifSvc := service.NewNotificationService(repository.NewNotificationRepository(db))
	h := NewPaymentHandler(&config.Config{}, repository.NewPaymentRepository(db), repository.NewPackageRepository(db), ledger, notifSvc, provider)
	r := gin.New()
	r.POST("/me/payments/:payment_id/verify", asUser(userID), h.Verify)
	return r, ledger
}

func postVerify(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func seedPendingPayment(t *testing.T, db *gorm.DB, userID uint, ref string, tokens int64) *models.Payment {
	t.Helper()
	p := &models.Payment{
		UserID:      userID,
		Tokens:      tokens,
		AmountCents: 999,
		Currency:    "usd",
		Provider:    "fake",
		ProviderRef: ref,
		Status:      domain.PaymentStatusPending,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestVerifyCompletesPaidPayment(t *testing.T) {
	db := newHandlerTestDB(t)
	provider := &fakePaymentProvider{paid: true}
	r, ledger := newVerifyRouter(t, db, 1, provider)
	p := seedPendingPayment(t, db, 1, "sess_verify_1", 250)

	w := postVerify(r, "/me/payments/1/verify")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.PaymentStatusCompleted, resp["status"])
	assert.Equal(t, []string{"sess_verify_1"}, provider.verified)

	balance, err := ledger.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)

	var stored models.Payment
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.Equal(t, domain.PaymentStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
}

func TestVerifyDoesNotDoubleCreditAfterWebhook(t *testing.T) {
	db := newHandlerTestDB(t)
	provider := &fakePaymentProvider{paid: true}
	r, ledger := newVerifyRouter(t, db, 1, provider)
	seedPendingPayment(t, db, 1, "sess_verify_2", 100)

	// webhook credited first with the same idempotency key
	require.NoError(t, ledger.Credit(1, 100, domain.TxTypePurchase, "Token package purchase", nil, "payment:sess_verify_2"))

	w := postVerify(r, "/me/payments/1/verify")
	require.Equal(t, http.StatusOK, w.Code)

	balance, err := ledger.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	_, total, err := ledger.ListTransactions(1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestVerifyUnpaidLeavesPaymentPending(t *testing.T) {
	db := newHandlerTestDB(t)
	provider := &fakePaymentProvider{paid: false}
	r, ledger := newVerifyRouter(t, db, 1, provider)
	seedPendingPayment(t, db, 1, "sess_verify_3", 100)

	w := postVerify(r, "/me/payments/1/verify")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.PaymentStatusPending, resp["status"])

	balance, err := ledger.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestVerifyAccessAndErrors(t *testing.T) {
	db := newHandlerTestDB(t)
	provider := &fakePaymentProvider{paid: true}
	r, _ := newVerifyRouter(t, db, 1, provider)
	seedPendingPayment(t, db, 2, "sess_other_user", 100)

	// someone else's payment
	assert.Equal(t, http.StatusNotFound, postVerify(r, "/me/payments/1/verify").Code)
	// missing payment
	assert.Equal(t, http.StatusNotFound, postVerify(r, "/me/payments/99/verify").Code)
	// bad id
	assert.Equal(t, http.StatusBadRequest, postVerify(r, "/me/payments/abc/verify").Code)
	assert.Empty(t, provider.verified)

	// provider outage surfaces as bad gateway
	seedPendingPayment(t, db, 1, "sess_verify_4", 100)
	provider.verifyErr = errors.New("provider down")
	assert.Equal(t, http.StatusBadGateway, postVerify(r, "/me/payments/2/verify").Code)

	// already-completed payments answer without calling the provider
	provider.verifyErr = nil
	provider.verified = nil
	var p models.Payment
	require.NoError(t, db.First(&p, 2).Error)
	p.Status = domain.PaymentStatusCompleted
	require.NoError(t, db.Save(&p).Error)
	w := postVerify(r, "/me/payments/2/verify")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, provider.verified)
}
