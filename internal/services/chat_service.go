package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"patient-portal-server/internal/gemini"
	"patient-portal-server/internal/models"
	"patient-portal-server/internal/repository"
)

// defaultSession is used when a legacy client supplies no session id.
const defaultSession = "default"

// LLMClient generates an assistant reply for a user message, optionally
// grounded in extracted document text.
type LLMClient interface {
	GenerateResponse(ctx context.Context, message, documentText string) (string, error)
}

// TextExtractor pulls plain text out of an uploaded document.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// Canned replies shown instead of provider errors, mirroring what users of
// the chat UI expect to see.
const (
	replyModelUnavailable = "The AI model is currently unavailable. Please try again later."
	replyTimeout          = "The request timed out. Please try again."
	replyGenericFailure   = "I'm experiencing technical difficulties. Please try again later."
)

// ChatService runs the single-conversation-per-session assistant dialogue.
type ChatService struct {
	repo      repository.ConversationRepository
	llm       LLMClient
	extractor TextExtractor
	log       *zap.Logger
}

func NewChatService(repo repository.ConversationRepository, llm LLMClient, extractor TextExtractor, log *zap.Logger) *ChatService {
	return &ChatService{repo: repo, llm: llm, extractor: extractor, log: log}
}

// Send appends the user message, asks the model for a reply with the
// conversation's document text as context, appends the reply and persists the
// conversation. Provider failures degrade to a canned reply rather than an
// error: the exchange is still recorded.
func (s *ChatService) Send(ctx context.Context, sessionID, message string) (string, error) {
	conv, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return "", err
	}

	conv.Append(models.SenderUser, message)

	reply, err := s.llm.GenerateResponse(ctx, message, conv.PdfText)
	if err != nil {
		s.log.Error("model call failed",
			zap.String("session_id", conv.SessionID),
			zap.Error(err))
		reply = fallbackReply(err)
	}
	conv.Append(models.SenderAI, reply)

	if err := s.repo.Save(ctx, conv); err != nil {
		return "", fmt.Errorf("saving conversation: %w", err)
	}
	return reply, nil
}

// History returns the conversation's messages, or an empty slice when the
// session has no conversation yet.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	conv, err := s.find(ctx, sessionID)
	if errors.Is(err, repository.ErrConversationNotFound) {
		return []models.ChatMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	return conv.Messages, nil
}

// AttachDocument extracts text from the uploaded document and stores it as
// the session's model context.
func (s *ChatService) AttachDocument(ctx context.Context, sessionID string, data []byte) error {
	text, err := s.extractor.ExtractText(data)
	if err != nil {
		return fmt.Errorf("extracting document text: %w", err)
	}

	conv, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return err
	}
	conv.PdfText = text

	if err := s.repo.Save(ctx, conv); err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	s.log.Info("document text attached",
		zap.String("session_id", conv.SessionID),
		zap.Int("text_len", len(text)))
	return nil
}

func (s *ChatService) find(ctx context.Context, sessionID string) (*models.Conversation, error) {
	if sessionID == "" {
		// Legacy clients that never adopted session ids get the most recent
		// conversation, the way the original single-conversation flow worked.
		return s.repo.FindMostRecent(ctx)
	}
	return s.repo.FindBySession(ctx, sessionID)
}

func (s *ChatService) loadOrCreate(ctx context.Context, sessionID string) (*models.Conversation, error) {
	conv, err := s.find(ctx, sessionID)
	if errors.Is(err, repository.ErrConversationNotFound) {
		if sessionID == "" {
			sessionID = defaultSession
		}
		return &models.Conversation{SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func fallbackReply(err error) string {
	switch {
	case errors.Is(err, gemini.ErrModelUnavailable):
		return replyModelUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return replyTimeout
	default:
		return replyGenericFailure
	}
}
