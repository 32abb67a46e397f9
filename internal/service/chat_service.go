package service

import (
	"context"
	"fmt"

	"velora/config"
	"velora/internal/domain"
	"velora/internal/models"
	"velora/internal/repository"
	"velora/pkg/llm"
)

// ChatProvider is the slice of the LLM client the chat flow needs.
type ChatProvider interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

const chatContextMessages = 20

// ChatService meters and answers character chat messages. Each user message
// costs TokensPerChatMessage; the debit happens before the LLM call.
type ChatService struct {
	cfg           *config.TokenConfig
	chatRepo      *repository.ChatRepository
	characterRepo *repository.CharacterRepository
	ledger        *repository.LedgerRepository
	provider      ChatProvider
}

func NewChatService(cfg *config.TokenConfig, chatRepo *repository.ChatRepository, characterRepo *repository.CharacterRepository, ledger *repository.LedgerRepository, provider ChatProvider) *ChatService {
	return &ChatService{
		cfg:           cfg,
		chatRepo:      chatRepo,
		characterRepo: characterRepo,
		ledger:        ledger,
		provider:      provider,
	}
}

// SendMessage stores the user message, debits its cost, and returns the
// assistant's reply (also stored). The debit precedes the LLM call so an
// out-of-tokens user never triggers billable provider work.
func (s *ChatService) SendMessage(ctx context.Context, session *models.ChatSession, content string) (*models.ChatMessage, *models.ChatMessage, error) {
	cost := s.cfg.TokensPerChatMessage
	if cost > 0 {
		err := s.ledger.Debit(session.UserID, cost, "Chat message", map[string]interface{}{
			"session_id":   session.ID,
			"character_id": session.CharacterID,
		})
		if err != nil {
			return nil, nil, err
		}
	}
	userMsg := &models.ChatMessage{
		SessionID: session.ID,
		Role:      domain.ChatRoleUser,
		Content:   content,
		TokenCost: cost,
	}
	if err := s.chatRepo.AppendMessage(userMsg); err != nil {
		return nil, nil, err
	}

	character := &session.Character
	if character.ID == 0 {
		c, err := s.characterRepo.GetByID(session.CharacterID)
		if err != nil {
			return userMsg, nil, err
		}
		character = c
	}
	history, err := s.chatRepo.RecentMessages(session.ID, chatContextMessages)
	if err != nil {
		return userMsg, nil, err
	}
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: "system", Content: character.Persona})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	reply, err := s.provider.Complete(ctx, messages)
	if err != nil {
		return userMsg, nil, fmt.Errorf("chat completion: %w", err)
	}
	assistantMsg := &models.ChatMessage{
		SessionID: session.ID,
		Role:      domain.ChatRoleAssistant,
		Content:   reply,
	}
	if err := s.chatRepo.AppendMessage(assistantMsg); err != nil {
		return userMsg, nil, err
	}
	return userMsg, assistantMsg, nil
}
