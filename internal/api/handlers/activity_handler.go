package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmassist/internal/assistant"
	"pharmassist/internal/store"
)

// ActivityHandler serves the persisted activity trail and the
// in-process audit events.
type ActivityHandler struct {
	store *store.FileStore
	agent *assistant.Agent
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(s *store.FileStore, agent *assistant.Agent) *ActivityHandler {
	return &ActivityHandler{store: s, agent: agent}
}

// Recent returns activity log entries newest first. Optional filters:
// user, entity_type; limit defaults to 50.
func (h *ActivityHandler) Recent(c *gin.Context) {
	limit := parseLimit(c, "limit", 50)
	filter := store.ActivityFilter{
		UserID:     c.Query("user"),
		EntityType: c.Query("entity_type"),
	}
	entries, err := h.store.Recent(limit, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"entries": entries,
		"count":   len(entries),
	})
}

// AuditEvents returns the assistant's recent query audit events.
func (h *ActivityHandler) AuditEvents(c *gin.Context) {
	limit := parseLimit(c, "limit", 50)
	events := h.agent.AuditEvents(limit)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"events":  events,
		"count":   len(events),
	})
}

// AuditStatistics summarizes the audit trail.
func (h *ActivityHandler) AuditStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"statistics": h.agent.AuditStatistics(),
	})
}
