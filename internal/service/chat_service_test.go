package service

import (
	"context"
	"testing"

	"velora/config"
	"velora/internal/domain"
	"velora/internal/models"
	"velora/internal/repository"
	"velora/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeChatProvider struct {
	reply    string
	lastMsgs []llm.Message
}

func (f *fakeChatProvider) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.lastMsgs = messages
	return f.reply, nil
}

func newChatFixture(t *testing.T) (*gorm.DB, *ChatService, *repository.LedgerRepository, *fakeChatProvider, *models.ChatSession) {
	t.Helper()
	db := newServiceTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.Character{}, &models.ChatSession{}, &models.ChatMessage{}))

	char := &models.Character{Name: "Luna", Slug: "luna", Persona: "You are Luna, playful and kind.", Visibility: domain.VisibilityPublic}
	require.NoError(t, db.Create(char).Error)
	session := &models.ChatSession{UserID: 1, CharacterID: char.ID}
	require.NoError(t, db.Create(session).Error)

	cfg := &config.TokenConfig{TokensPerChatMessage: 1}
	ledger := repository.NewLedgerRepository(db)
	provider := &fakeChatProvider{reply: "Hi! I missed you."}
	svc := NewChatService(cfg, repository.NewChatRepository(db), repository.NewCharacterRepository(db), ledger, provider)
	return db, svc, ledger, provider, session
}

func TestSendMessage(t *testing.T) {
	db, svc, ledger, provider, session := newChatFixture(t)
	require.NoError(t, ledger.Credit(1, 10, domain.TxTypePurchase, "pack", nil, ""))

	userMsg, assistantMsg, err := svc.SendMessage(context.Background(), session, "Hey Luna")
	require.NoError(t, err)
	assert.Equal(t, domain.ChatRoleUser, userMsg.Role)
	assert.Equal(t, "Hey Luna", userMsg.Content)
	require.NotNil(t, assistantMsg)
	assert.Equal(t, domain.ChatRoleAssistant, assistantMsg.Role)
	assert.Equal(t, "Hi! I missed you.", assistantMsg.Content)

	balance, err := ledger.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(9), balance, "each user message costs one token")

	// persona goes in as the system prompt, then the history
	require.NotEmpty(t, provider.lastMsgs)
	assert.Equal(t, "system", provider.lastMsgs[0].Role)
	assert.Contains(t, provider.lastMsgs[0].Content, "Luna")
	assert.Equal(t, "Hey Luna", provider.lastMsgs[len(provider.lastMsgs)-1].Content)

	var stored int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Where("session_id = ?", session.ID).Count(&stored).Error)
	assert.Equal(t, int64(2), stored)
}

func TestSendMessageInsufficientTokens(t *testing.T) {
	db, svc, ledger, _, session := newChatFixture(t)

	_, _, err := svc.SendMessage(context.Background(), session, "Hey")
	assert.ErrorIs(t, err, repository.ErrNoBalanceRecord)

	require.NoError(t, ledger.Credit(1, 1, domain.TxTypePurchase, "pack", nil, ""))
	require.NoError(t, ledger.Debit(1, 1, "drain", nil))

	_, _, err = svc.SendMessage(context.Background(), session, "Hey")
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)

	var stored int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Count(&stored).Error)
	assert.Equal(t, int64(0), stored, "unpaid messages are never stored")
}

func TestSendMessageKeepsHistoryOrder(t *testing.T) {
	_, svc, ledger, provider, session := newChatFixture(t)
	require.NoError(t, ledger.Credit(1, 10, domain.TxTypePurchase, "pack", nil, ""))

	_, _, err := svc.SendMessage(context.Background(), session, "first")
	require.NoError(t, err)
	_, _, err = svc.SendMessage(context.Background(), session, "second")
	require.NoError(t, err)

	// system + (first, reply, second)
	require.Len(t, provider.lastMsgs, 4)
	assert.Equal(t, "first", provider.lastMsgs[1].Content)
	assert.Equal(t, domain.ChatRoleAssistant, provider.lastMsgs[2].Role)
	assert.Equal(t, "second", provider.lastMsgs[3].Content)
}
