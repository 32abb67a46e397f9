package repository

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"velora/internal/domain"
	"velora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNoBalanceRecord     = errors.New("no token balance record for user")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrDuplicateCredit     = errors.New("credit already applied for this idempotency key")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidCreditType   = errors.New("invalid credit transaction type")
)

// LedgerRepository owns the token balance and its append-only transaction
// log. Every balance mutation appends exactly one transaction inside the same
// database transaction, so the balance is always reconstructible as the sum
// of the user's transactions.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetBalance returns the user's current balance, 0 when no balance row
// exists yet (zero-state, not an error).
func (r *LedgerRepository) GetBalance(userID uint) (int64, error) {
	var b models.TokenBalance
	err := r.db.Where("user_id = ?", userID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return b.Balance, nil
}

func (r *LedgerRepository) HasSufficientBalance(userID uint, required int64) (bool, error) {
	balance, err := r.GetBalance(userID)
	if err != nil {
		return false, err
	}
	return balance >= required, nil
}

// Debit removes amount tokens and appends a usage transaction. The balance
// check and decrement run as one conditional UPDATE verified by affected
// rows, so concurrent debits can never drive the balance below zero.
func (r *LedgerRepository) Debit(userID uint, amount int64, description string, metadata map[string]interface{}) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	meta, err := encodeMetadata(metadata)
	if err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TokenBalance{}).
			Where("user_id = ? AND balance >= ?", userID, amount).
			UpdateColumns(map[string]interface{}{
				"balance":    gorm.Expr("balance - ?", amount),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.TokenBalance{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNoBalanceRecord
			}
			return ErrInsufficientBalance
		}
		return tx.Create(&models.TokenTransaction{
			UserID:      userID,
			Amount:      -amount,
			Type:        domain.TxTypeUsage,
			Description: description,
			Metadata:    meta,
		}).Error
	})
}

// Credit adds amount tokens, lazily creating the balance row on first
// credit, and appends a transaction of the given type. A non-empty
// idempotencyKey makes the credit safe to retry: a second call with the same
// key returns ErrDuplicateCredit without touching the balance.
func (r *LedgerRepository) Credit(userID uint, amount int64, txType, description string, metadata map[string]interface{}, idempotencyKey string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	switch txType {
	case domain.TxTypePurchase, domain.TxTypeRefund, domain.TxTypeBonus:
	default:
		return ErrInvalidCreditType
	}
	meta, err := encodeMetadata(metadata)
	if err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if idempotencyKey != "" {
			var count int64
			if err := tx.Model(&models.TokenTransaction{}).
				Where("idempotency_key = ?", idempotencyKey).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateCredit
			}
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"balance":    gorm.Expr("balance + ?", amount),
				"updated_at": time.Now(),
			}),
		}).Create(&models.TokenBalance{UserID: userID, Balance: amount}).Error; err != nil {
			return err
		}
		t := &models.TokenTransaction{
			UserID:      userID,
			Amount:      amount,
			Type:        txType,
			Description: description,
			Metadata:    meta,
		}
		if idempotencyKey != "" {
			key := idempotencyKey
			t.IdempotencyKey = &key
		}
		if err := tx.Create(t).Error; err != nil {
			// Two concurrent credits with the same key can both pass the
			// pre-check; the losing insert hits the unique index instead.
			if idempotencyKey != "" && isDuplicateKeyErr(err) {
				return ErrDuplicateCredit
			}
			return err
		}
		return nil
	})
}

// ListTransactions returns one page of the user's transactions, newest
// first, plus the total count for pagination.
func (r *LedgerRepository) ListTransactions(userID uint, limit, offset int) ([]models.TokenTransaction, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var total int64
	if err := r.db.Model(&models.TokenTransaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []models.TokenTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// SumTransactions returns the sum of all transaction amounts for a user.
// Used by the admin reconciliation check: the result must always equal the
// stored balance.
func (r *LedgerRepository) SumTransactions(userID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.TokenTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

// TotalByType returns the absolute sum of all transaction amounts of one
// type across all users, for the admin stats surface.
func (r *LedgerRepository) TotalByType(txType string) (int64, error) {
	var sum int64
	err := r.db.Model(&models.TokenTransaction{}).
		Where("type = ?", txType).
		Select("COALESCE(SUM(ABS(amount)), 0)").
		Scan(&sum).Error
	return sum, err
}

// UsageBucket is one point of the usage-over-time series.
type UsageBucket struct {
	Period     string `json:"period"`
	TokensUsed int64  `json:"tokens_used"`
	Usages     int64  `json:"usages"`
}

// UsageStats aggregates usage-typed transactions across all users into a
// chartable series. week and month bucket by day, year by month. Bucketing
// happens in Go so the query stays portable across dialects.
func (r *LedgerRepository) UsageStats(timeframe string) ([]UsageBucket, error) {
	now := time.Now()
	var since time.Time
	byMonth := false
	switch timeframe {
	case domain.TimeframeWeek:
		since = now.AddDate(0, 0, -7)
	case domain.TimeframeMonth:
		since = now.AddDate(0, 0, -30)
	case domain.TimeframeYear:
		since = now.AddDate(-1, 0, 0)
		byMonth = true
	default:
		since = now.AddDate(0, 0, -7)
	}
	var rows []models.TokenTransaction
	err := r.db.Select("amount", "created_at").
		Where("type = ? AND created_at >= ?", domain.TxTypeUsage, since).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	layout := "2006-01-02"
	if byMonth {
		layout = "2006-01"
	}
	byPeriod := make(map[string]*UsageBucket)
	order := make([]string, 0)
	for _, t := range rows {
		period := t.CreatedAt.Format(layout)
		b, ok := byPeriod[period]
		if !ok {
			b = &UsageBucket{Period: period}
			byPeriod[period] = b
			order = append(order, period)
		}
		b.TokensUsed += -t.Amount
		b.Usages++
	}
	stats := make([]UsageBucket, 0, len(order))
	for _, p := range order {
		stats = append(stats, *byPeriod[p])
	}
	return stats, nil
}

// isDuplicateKeyErr recognizes a unique-constraint violation across the
// dialects we run against (MySQL in production, SQLite in tests).
func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

func encodeMetadata(metadata map[string]interface{}) (string, error) {
	if len(metadata) == 0 {
		return "", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
