package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"patient-portal-server/internal/services"
	"patient-portal-server/internal/utils"
	"patient-portal-server/pkg/metrics"
)

// ChatHandler handles assistant chat and document upload requests.
type ChatHandler struct {
	service   *services.ChatService
	collector *metrics.Collector
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service *services.ChatService, collector *metrics.Collector) *ChatHandler {
	return &ChatHandler{service: service, collector: collector}
}

// ChatRequest represents one user message. SessionID scopes the conversation
// to the calling client; clients that omit it share the legacy conversation.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// Chat processes one message exchange.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	reply, err := h.service.Send(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		utils.InternalServerError(c, "Error processing your request")
		return
	}

	h.collector.ChatMessagesTotal.Inc()
	c.JSON(http.StatusOK, ChatResponse{Response: reply})
}

// GetHistory returns the session's messages, oldest first.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	messages, err := h.service.History(c.Request.Context(), c.Query("sessionId"))
	if err != nil {
		utils.InternalServerError(c, "Error fetching chat history")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// UploadPdf extracts text from the uploaded PDF and attaches it to the
// session's conversation as model context.
func (h *ChatHandler) UploadPdf(c *gin.Context) {
	file, _, err := c.Request.FormFile("pdf")
	if err != nil {
		utils.BadRequest(c, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.InternalServerError(c, "Error reading uploaded file")
		return
	}

	if err := h.service.AttachDocument(c.Request.Context(), c.PostForm("sessionId"), data); err != nil {
		utils.InternalServerError(c, "Error processing PDF")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "PDF uploaded successfully"})
}
