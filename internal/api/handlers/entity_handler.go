package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pharmassist/internal/store"
)

// EntityHandler serves raw pharmacy records, bypassing the assistant.
type EntityHandler struct {
	store *store.FileStore
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(s *store.FileStore) *EntityHandler {
	return &EntityHandler{store: s}
}

// ListCollections returns the known collection names.
func (h *EntityHandler) ListCollections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"collections": store.Collections,
		"count":       len(store.Collections),
	})
}

// ListRecords returns every record of a collection, sorted by name.
func (h *EntityHandler) ListRecords(c *gin.Context) {
	collection := c.Param("collection")
	records, err := h.store.List(collection)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrUnknownCollection) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	records = store.SortedByName(records)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"collection": collection,
		"records":    records,
		"count":      len(records),
	})
}

// GetRecord returns a single record by id.
func (h *EntityHandler) GetRecord(c *gin.Context) {
	collection := c.Param("collection")
	id := c.Param("id")
	record, err := h.store.GetByID(collection, id)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, store.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, store.ErrUnknownCollection):
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"collection": collection,
		"record":     record,
	})
}

// QueryRequest selects records by a JSONPath expression, e.g. "$.name"
// or "$.inventory.03".
type QueryRequest struct {
	Path string `json:"path" binding:"required"`
}

// QueryRecords runs a JSONPath query against a collection.
func (h *EntityHandler) QueryRecords(c *gin.Context) {
	collection := c.Param("collection")
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}
	matches, err := h.store.QueryRecords(collection, req.Path)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrUnknownCollection) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"collection": collection,
		"path":       req.Path,
		"matches":    matches,
		"count":      len(matches),
	})
}

// GetStock returns a medicine's stock level and status band. The
// optional department query parameter narrows the sum to one
// department's stores.
func (h *EntityHandler) GetStock(c *gin.Context) {
	id := c.Param("id")
	departmentID := c.Query("department")

	quantity, err := h.store.GetStock(id, departmentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	status, err := h.store.GetStockStatus(id, departmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"medicine_id": id,
		"quantity":    quantity,
		"status":      status,
	})
}

// parseLimit reads an integer query parameter with a default.
func parseLimit(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
