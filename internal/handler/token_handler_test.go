package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"velora/internal/domain"
	"velora/internal/models"
	"velora/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// asUser stands in for AuthRequired in tests.
func asUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func newTokenRouter(t *testing.T, db *gorm.DB, userID uint) (*gin.Engine, *repository.LedgerRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ledger := repository.NewLedgerRepository(db)
	h := NewTokenHandler(ledger)
	r := gin.New()
	me := r.Group("/me", asUser(userID))
	me.GET("/tokens", h.GetBalance)
	me.GET("/tokens/transactions", h.GetTransactions)
	r.GET("/admin/tokens/usage-stats", h.GetUsageStats)
	r.GET("/admin/tokens/reconcile/:user_id", h.Reconcile)
	return r, ledger
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetBalance(t *testing.T) {
	db := newHandlerTestDB(t)
	r, ledger := newTokenRouter(t, db, 1)

	w := doGet(r, "/me/tokens")
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Balance int64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(0), resp.Balance, "fresh users read zero, not an error")

	require.NoError(t, ledger.Credit(1, 100, domain.TxTypePurchase, "pack", nil, ""))
	w = doGet(r, "/me/tokens")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(100), resp.Balance)
}

func TestGetTransactionsPagination(t *testing.T) {
	db := newHandlerTestDB(t)
	r, ledger := newTokenRouter(t, db, 1)

	require.NoError(t, ledger.Credit(1, 100, domain.TxTypePurchase, "pack", nil, ""))
	for i := 0; i < 4; i++ {
		require.NoError(t, ledger.Debit(1, 1, fmt.Sprintf("usage %d", i), nil))
	}
	// another user's history stays invisible
	require.NoError(t, ledger.Credit(2, 50, domain.TxTypePurchase, "other", nil, ""))

	w := doGet(r, "/me/tokens/transactions?page=1&limit=2")
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success      bool                      `json:"success"`
		Transactions []models.TokenTransaction `json:"transactions"`
		Total        int64                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(5), resp.Total)
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, "usage 3", resp.Transactions[0].Description, "newest first")
	for _, tx := range resp.Transactions {
		assert.Equal(t, uint(1), tx.UserID)
	}

	w = doGet(r, "/me/tokens/transactions?page=3&limit=2")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "pack", resp.Transactions[0].Description)

	// bogus paging falls back to defaults
	w = doGet(r, "/me/tokens/transactions?page=-1&limit=10000")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUsageStatsEndpoint(t *testing.T) {
	db := newHandlerTestDB(t)
	r, ledger := newTokenRouter(t, db, 1)

	require.NoError(t, ledger.Credit(1, 100, domain.TxTypePurchase, "pack", nil, ""))
	require.NoError(t, ledger.Debit(1, 5, "image", nil))
	require.NoError(t, ledger.Debit(1, 1, "chat", nil))

	w := doGet(r, "/admin/tokens/usage-stats?timeframe=week")
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                     `json:"success"`
		Stats   []repository.UsageBucket `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Stats, 1)
	assert.Equal(t, int64(6), resp.Stats[0].TokensUsed)
	assert.Equal(t, int64(2), resp.Stats[0].Usages)
}

func TestReconcileEndpoint(t *testing.T) {
	db := newHandlerTestDB(t)
	r, ledger := newTokenRouter(t, db, 1)

	require.NoError(t, ledger.Credit(1, 100, domain.TxTypePurchase, "pack", nil, ""))
	require.NoError(t, ledger.Debit(1, 30, "image", nil))

	w := doGet(r, "/admin/tokens/reconcile/1")
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Balance        int64 `json:"balance"`
		TransactionSum int64 `json:"transaction_sum"`
		Consistent     bool  `json:"consistent"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(70), resp.Balance)
	assert.Equal(t, int64(70), resp.TransactionSum)
	assert.True(t, resp.Consistent)

	// drifted balance is reported, not hidden
	require.NoError(t, db.Model(&models.TokenBalance{}).Where("user_id = ?", 1).
		Update("balance", 99).Error)
	w = doGet(r, "/admin/tokens/reconcile/1")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Consistent)

	w = doGet(r, "/admin/tokens/reconcile/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
