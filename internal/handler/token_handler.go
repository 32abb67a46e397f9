package handler

import (
	"net/http"
	"strconv"

	"velora/internal/middleware"
	"velora/internal/repository"

	"github.com/gin-gonic/gin"
)

type TokenHandler struct {
	ledger *repository.LedgerRepository
}

func NewTokenHandler(ledger *repository.LedgerRepository) *TokenHandler {
	return &TokenHandler{ledger: ledger}
}

// GetBalance returns the current user's token balance; 0 when the user has
// never been credited.
func (h *TokenHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	balance, err := h.ledger.GetBalance(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// GetTransactions returns one page of the user's token history, newest first.
func (h *TokenHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	txs, total, err := h.ledger.ListTransactions(userID, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transactions unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": txs,
		"total":        total,
	})
}

// GetUsageStats returns the usage series for admin charting.
func (h *TokenHandler) GetUsageStats(c *gin.Context) {
	timeframe := c.DefaultQuery("timeframe", "week")
	stats, err := h.ledger.UsageStats(timeframe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// Reconcile compares a user's stored balance against the sum of their
// transactions. The two must always agree.
func (h *TokenHandler) Reconcile(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	balance, err := h.ledger.GetBalance(uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "balance unavailable"})
		return
	}
	sum, err := h.ledger.SumTransactions(uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sum unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":         balance,
		"transaction_sum": sum,
		"consistent":      balance == sum,
	})
}
