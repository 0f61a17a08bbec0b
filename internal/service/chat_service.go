package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/repository"
	"github.com/w3art/marko/internal/transfer"
)

var ErrConversationNotFound = errors.New("conversation not found")

// chatHistoryLimit bounds how many stored turns are fed back to the model.
const chatHistoryLimit = 50

type ChatService interface {
	ListConversations(ctx context.Context, userID int64) ([]*models.Conversation, error)
	GetConversation(ctx context.Context, id, userID int64) (*models.Conversation, error)
	Send(ctx context.Context, userID int64, req *transfer.ChatRequest) (*transfer.ChatResponse, error)
	DeleteConversation(ctx context.Context, id, userID int64) error
}

type chatService struct {
	ai AIService
	c  repository.ConversationRepository
	m  repository.MessageRepository
	u  repository.UserRepository
	ma repository.MetaAccountRepository
}

func NewChatService(
	ai AIService,
	c repository.ConversationRepository,
	m repository.MessageRepository,
	u repository.UserRepository,
	ma repository.MetaAccountRepository) ChatService {
	return &chatService{
		ai: ai,
		c:  c,
		m:  m,
		u:  u,
		ma: ma,
	}
}

func (s *chatService) ListConversations(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	return s.c.List(ctx, userID)
}

func (s *chatService) GetConversation(ctx context.Context, id, userID int64) (*models.Conversation, error) {
	conversation, isExist, err := s.c.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrConversationNotFound
	}

	messages, err := s.m.ListByConversation(ctx, conversation.ID)
	if err != nil {
		return nil, err
	}
	conversation.Messages = messages

	return conversation, nil
}

// Send records the user turn, asks the assistant for a reply with the full
// conversation history, and records the assistant turn. An assistant failure
// is stored as an apologetic reply rather than failing the request, so the
// conversation stays consistent.
func (s *chatService) Send(ctx context.Context, userID int64, req *transfer.ChatRequest) (*transfer.ChatResponse, error) {
	var conversation *models.Conversation

	if req.ConversationID != 0 {
		existing, isExist, err := s.c.GetByID(ctx, req.ConversationID, userID)
		if err != nil {
			return nil, err
		}
		if !isExist {
			return nil, ErrConversationNotFound
		}
		conversation = existing
	} else {
		conversation = &models.Conversation{
			UserID: userID,
			Title:  conversationTitle(req.Message),
		}
		id, err := s.c.Create(ctx, nil, conversation)
		if err != nil {
			return nil, err
		}
		conversation.ID = id
	}

	userMessage := &models.Message{
		ConversationID: conversation.ID,
		Role:           models.RoleUser,
		Content:        req.Message,
	}
	userMessageID, err := s.m.Create(ctx, nil, userMessage)
	if err != nil {
		return nil, err
	}
	userMessage.ID = userMessageID
	userMessage.CreatedAt = time.Now()

	history, err := s.m.ListRecent(ctx, conversation.ID, chatHistoryLimit)
	if err != nil {
		return nil, err
	}

	aiMessages := make([]transfer.AIMessage, 0, len(history))
	for _, m := range history {
		aiMessages = append(aiMessages, transfer.AIMessage{Role: m.Role, Content: m.Content})
	}
	if len(aiMessages) == 0 {
		aiMessages = append(aiMessages, transfer.AIMessage{Role: models.RoleUser, Content: req.Message})
	}

	chatContext, err := s.buildContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	responseText, err := s.ai.Chat(ctx, aiMessages, chatContext)
	if err != nil {
		responseText = fmt.Sprintf("Désolé, j'ai rencontré un problème technique. Erreur: %s", err.Error())
	}

	aiMessage := &models.Message{
		ConversationID: conversation.ID,
		Role:           models.RoleAssistant,
		Content:        responseText,
	}
	aiMessageID, err := s.m.Create(ctx, nil, aiMessage)
	if err != nil {
		return nil, err
	}
	aiMessage.ID = aiMessageID
	aiMessage.CreatedAt = time.Now()

	if err := s.c.Touch(ctx, conversation.ID); err != nil {
		return nil, err
	}

	return &transfer.ChatResponse{
		ConversationID: conversation.ID,
		Message:        userMessage,
		Response:       aiMessage,
	}, nil
}

func (s *chatService) DeleteConversation(ctx context.Context, id, userID int64) error {
	_, isExist, err := s.c.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if !isExist {
		return ErrConversationNotFound
	}
	return s.c.Remove(ctx, id)
}

func (s *chatService) buildContext(ctx context.Context, userID int64) (*transfer.ChatContext, error) {
	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, errors.New("user not found")
	}

	chatContext := &transfer.ChatContext{
		UserName:    user.Name,
		CompanyName: user.CompanyName,
	}

	account, isExist, err := s.ma.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if isExist {
		chatContext.MetaConnected = true
		chatContext.InstagramUsername = account.InstagramUsername
		chatContext.FacebookPage = account.FacebookPageName
	}

	return chatContext, nil
}

func conversationTitle(message string) string {
	runes := []rune(message)
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return message
}
