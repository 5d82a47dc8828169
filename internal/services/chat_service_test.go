package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"patient-portal-server/internal/gemini"
	"patient-portal-server/internal/models"
	"patient-portal-server/internal/repository"
)

var (
	_ LLMClient     = (*MockLLM)(nil)
	_ TextExtractor = (*MockExtractor)(nil)
)

// MockLLM records calls and returns a scripted reply.
type MockLLM struct {
	GenerateFunc func(ctx context.Context, message, documentText string) (string, error)
	lastMessage  string
	lastDocText  string
}

func (m *MockLLM) GenerateResponse(ctx context.Context, message, documentText string) (string, error) {
	m.lastMessage = message
	m.lastDocText = documentText
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, message, documentText)
	}
	return "scripted reply", nil
}

type MockExtractor struct {
	ExtractFunc func(data []byte) (string, error)
}

func (m *MockExtractor) ExtractText(data []byte) (string, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(data)
	}
	return "extracted text", nil
}

func newChatService(llm *MockLLM, extractor *MockExtractor) (*ChatService, *repository.MemoryConversationRepository) {
	repo := repository.NewMemoryConversationRepository()
	return NewChatService(repo, llm, extractor, zap.NewNop()), repo
}

func TestChatSendRecordsExchange(t *testing.T) {
	svc, repo := newChatService(&MockLLM{}, &MockExtractor{})

	reply, err := svc.Send(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "scripted reply", reply)

	conv, err := repo.FindBySession(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, models.SenderUser, conv.Messages[0].Sender)
	assert.Equal(t, "hello", conv.Messages[0].Text)
	assert.Equal(t, models.SenderAI, conv.Messages[1].Sender)
	assert.Equal(t, "scripted reply", conv.Messages[1].Text)
}

func TestChatSessionsAreIsolated(t *testing.T) {
	svc, _ := newChatService(&MockLLM{}, &MockExtractor{})

	_, err := svc.Send(context.Background(), "alice", "alice's question")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), "bob", "bob's question")
	require.NoError(t, err)

	aliceHistory, err := svc.History(context.Background(), "alice")
	require.NoError(t, err)
	bobHistory, err := svc.History(context.Background(), "bob")
	require.NoError(t, err)

	require.Len(t, aliceHistory, 2)
	require.Len(t, bobHistory, 2)
	assert.Equal(t, "alice's question", aliceHistory[0].Text)
	assert.Equal(t, "bob's question", bobHistory[0].Text)
}

func TestChatHistoryEmptyWhenNoConversation(t *testing.T) {
	svc, _ := newChatService(&MockLLM{}, &MockExtractor{})

	history, err := svc.History(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatFallbackOnModelUnavailable(t *testing.T) {
	llm := &MockLLM{GenerateFunc: func(context.Context, string, string) (string, error) {
		return "", gemini.ErrModelUnavailable
	}}
	svc, repo := newChatService(llm, &MockExtractor{})

	reply, err := svc.Send(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, replyModelUnavailable, reply)

	// The failed exchange is still recorded.
	conv, err := repo.FindBySession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 2)
}

func TestChatFallbackOnTimeout(t *testing.T) {
	llm := &MockLLM{GenerateFunc: func(context.Context, string, string) (string, error) {
		return "", context.DeadlineExceeded
	}}
	svc, _ := newChatService(llm, &MockExtractor{})

	reply, err := svc.Send(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, replyTimeout, reply)
}

func TestChatFallbackGeneric(t *testing.T) {
	llm := &MockLLM{GenerateFunc: func(context.Context, string, string) (string, error) {
		return "", errors.New("boom")
	}}
	svc, _ := newChatService(llm, &MockExtractor{})

	reply, err := svc.Send(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, replyGenericFailure, reply)
}

func TestAttachDocumentFeedsModelContext(t *testing.T) {
	llm := &MockLLM{}
	extractor := &MockExtractor{ExtractFunc: func([]byte) (string, error) {
		return "lab results text", nil
	}}
	svc, _ := newChatService(llm, extractor)

	require.NoError(t, svc.AttachDocument(context.Background(), "s1", []byte("%PDF-1.4")))

	_, err := svc.Send(context.Background(), "s1", "what do my labs say?")
	require.NoError(t, err)
	assert.Equal(t, "lab results text", llm.lastDocText)
	assert.Equal(t, "what do my labs say?", llm.lastMessage)
}

func TestAttachDocumentExtractionFailure(t *testing.T) {
	extractor := &MockExtractor{ExtractFunc: func([]byte) (string, error) {
		return "", errors.New("not a pdf")
	}}
	svc, repo := newChatService(&MockLLM{}, extractor)

	err := svc.AttachDocument(context.Background(), "s1", []byte("garbage"))
	require.Error(t, err)

	_, err = repo.FindBySession(context.Background(), "s1")
	assert.ErrorIs(t, err, repository.ErrConversationNotFound)
}

func TestChatLegacyClientsShareMostRecentConversation(t *testing.T) {
	svc, repo := newChatService(&MockLLM{}, &MockExtractor{})

	_, err := svc.Send(context.Background(), "", "first message")
	require.NoError(t, err)

	// The empty session id lands on the default conversation and stays there.
	_, err = svc.Send(context.Background(), "", "second message")
	require.NoError(t, err)

	conv, err := repo.FindMostRecent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", conv.SessionID)
	assert.Len(t, conv.Messages, 4)
}
