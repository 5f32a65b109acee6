package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pharmassist/internal/assistant"
)

// ChatHandler exposes the assistant over HTTP.
type ChatHandler struct {
	agent *assistant.Agent
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(agent *assistant.Agent) *ChatHandler {
	return &ChatHandler{agent: agent}
}

// ChatRequest is a single conversational turn. UserID doubles as the
// session key for pending confirmations; when absent the server mints
// one and returns it so the client can keep the conversation going.
type ChatRequest struct {
	Query  string `json:"query" binding:"required"`
	UserID string `json:"user_id"`
}

// ChatResponse wraps the assistant result together with the session id.
type ChatResponse struct {
	UserID string `json:"user_id"`
	assistant.Result
}

// Chat processes one natural-language query.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}
	if req.UserID == "" {
		req.UserID = uuid.New().String()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result := h.agent.ProcessQuery(ctx, req.Query, req.UserID)
	response := ChatResponse{UserID: req.UserID, Result: result}

	// Confirmation prompts are successful turns even though no command
	// ran yet; only genuine failures get a 400.
	if result.Success {
		c.JSON(http.StatusOK, response)
	} else {
		c.JSON(http.StatusBadRequest, response)
	}
}

// Commands lists example commands the assistant understands.
func (h *ChatHandler) Commands(c *gin.Context) {
	commands := h.agent.SupportedCommands()
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"commands": commands,
		"count":    len(commands),
	})
}

// History returns the caller's recent conversation turns.
func (h *ChatHandler) History(c *gin.Context) {
	userID := c.Param("user")
	turns := h.agent.History(userID, 20)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user_id": userID,
		"history": turns,
		"count":   len(turns),
	})
}
