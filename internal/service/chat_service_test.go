package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/transfer"
)

type chatFixture struct {
	ai            *fakeAIService
	conversations *fakeConversationRepo
	messages      *fakeMessageRepo
	users         *fakeUserRepo
	accounts      *fakeMetaAccountRepo
	s             ChatService
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		ai: &fakeAIService{
			chat: func(messages []transfer.AIMessage, chatContext *transfer.ChatContext) (string, error) {
				return "Bonjour ! Comment puis-je aider ?", nil
			},
		},
		conversations: newFakeConversationRepo(),
		messages:      newFakeMessageRepo(),
		users:         newFakeUserRepo(),
		accounts:      newFakeMetaAccountRepo(),
	}
	f.users.users[7] = &models.User{ID: 7, Email: "marie@boulangerie.fr", Name: "Marie", CompanyName: "Boulangerie Marie"}
	f.s = NewChatService(f.ai, f.conversations, f.messages, f.users, f.accounts)
	return f
}

func TestSendCreatesConversation(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	resp, err := f.s.Send(ctx, 7, &transfer.ChatRequest{Message: "Aide-moi avec ma campagne"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.ConversationID == 0 {
		t.Fatal("no conversation created")
	}
	if resp.Message.Role != models.RoleUser || resp.Response.Role != models.RoleAssistant {
		t.Errorf("unexpected roles: %q, %q", resp.Message.Role, resp.Response.Role)
	}

	conversation, _, _ := f.conversations.GetByID(ctx, resp.ConversationID, 7)
	if conversation.Title != "Aide-moi avec ma campagne" {
		t.Errorf("got title %q", conversation.Title)
	}

	stored, _ := f.messages.ListByConversation(ctx, resp.ConversationID)
	if len(stored) != 2 {
		t.Errorf("got %d stored messages, want 2", len(stored))
	}
}

func TestSendContinuesConversation(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	var gotHistory int
	f.ai.chat = func(messages []transfer.AIMessage, chatContext *transfer.ChatContext) (string, error) {
		gotHistory = len(messages)
		return "Suite de la conversation", nil
	}

	first, err := f.s.Send(ctx, 7, &transfer.ChatRequest{Message: "Premier message"})
	if err != nil {
		t.Fatalf("first Send: %v", err)
	}
	second, err := f.s.Send(ctx, 7, &transfer.ChatRequest{Message: "Deuxième message", ConversationID: first.ConversationID})
	if err != nil {
		t.Fatalf("second Send: %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Errorf("reply landed in conversation %d, want %d", second.ConversationID, first.ConversationID)
	}
	// user, assistant, user: the stored history goes to the model.
	if gotHistory != 3 {
		t.Errorf("model saw %d turns, want 3", gotHistory)
	}
}

func TestSendBoundsModelHistory(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	conversation := &models.Conversation{UserID: 7, Title: "Longue discussion"}
	conversationID, err := f.conversations.Create(ctx, nil, conversation)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < chatHistoryLimit+10; i++ {
		if _, err := f.messages.Create(ctx, nil, &models.Message{
			ConversationID: conversationID,
			Role:           models.RoleUser,
			Content:        "message",
		}); err != nil {
			t.Fatal(err)
		}
	}

	var gotHistory int
	f.ai.chat = func(messages []transfer.AIMessage, chatContext *transfer.ChatContext) (string, error) {
		gotHistory = len(messages)
		return "ok", nil
	}

	if _, err := f.s.Send(ctx, 7, &transfer.ChatRequest{Message: "Encore un", ConversationID: conversationID}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotHistory != chatHistoryLimit {
		t.Errorf("model saw %d turns, want %d", gotHistory, chatHistoryLimit)
	}
}

func TestSendStoresApologyOnModelFailure(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	f.ai.chat = func(messages []transfer.AIMessage, chatContext *transfer.ChatContext) (string, error) {
		return "", errors.New("rate limited")
	}

	resp, err := f.s.Send(ctx, 7, &transfer.ChatRequest{Message: "Bonjour"})
	if err != nil {
		t.Fatalf("Send should not fail when the model does: %v", err)
	}
	if !strings.HasPrefix(resp.Response.Content, "Désolé, j'ai rencontré un problème technique.") {
		t.Errorf("got reply %q, want the apology", resp.Response.Content)
	}
	if !strings.Contains(resp.Response.Content, "rate limited") {
		t.Errorf("apology should carry the error: %q", resp.Response.Content)
	}

	stored, _ := f.messages.ListByConversation(ctx, resp.ConversationID)
	if len(stored) != 2 {
		t.Errorf("got %d stored messages, want 2", len(stored))
	}
}

func TestSendBuildsContextFromAccount(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)
	f.accounts.accounts[7] = &models.MetaAccount{
		UserID:            7,
		IsActive:          true,
		InstagramUsername: "boulangerie.marie",
		FacebookPageName:  "Boulangerie Marie",
	}

	var gotContext *transfer.ChatContext
	f.ai.chat = func(messages []transfer.AIMessage, chatContext *transfer.ChatContext) (string, error) {
		gotContext = chatContext
		return "ok", nil
	}

	if _, err := f.s.Send(ctx, 7, &transfer.ChatRequest{Message: "Salut"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotContext == nil {
		t.Fatal("no context passed to the model")
	}
	if !gotContext.MetaConnected || gotContext.InstagramUsername != "boulangerie.marie" {
		t.Errorf("context missing account info: %+v", gotContext)
	}
	if gotContext.CompanyName != "Boulangerie Marie" {
		t.Errorf("context missing company: %+v", gotContext)
	}
}

func TestSendUnknownConversation(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.s.Send(context.Background(), 7, &transfer.ChatRequest{Message: "Bonjour", ConversationID: 42})
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("got %v, want ErrConversationNotFound", err)
	}
}

func TestGetConversationLoadsMessages(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	resp, err := f.s.Send(ctx, 7, &transfer.ChatRequest{Message: "Bonjour"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	conversation, err := f.s.GetConversation(ctx, resp.ConversationID, 7)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if len(conversation.Messages) != 2 {
		t.Errorf("got %d messages, want 2", len(conversation.Messages))
	}

	if _, err := f.s.GetConversation(ctx, resp.ConversationID, 8); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("got %v, want ErrConversationNotFound for another user", err)
	}
}

func TestConversationTitleTruncation(t *testing.T) {
	long := strings.Repeat("a", 60)
	title := conversationTitle(long)
	if len([]rune(title)) != 53 {
		t.Errorf("got length %d, want 53", len([]rune(title)))
	}
	if !strings.HasSuffix(title, "...") {
		t.Errorf("got %q, want a truncated title", title)
	}

	if got := conversationTitle("court"); got != "court" {
		t.Errorf("short message should pass through, got %q", got)
	}
}
