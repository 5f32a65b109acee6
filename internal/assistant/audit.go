package assistant

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// AuditEvent records one interpreter interaction.
type AuditEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	EventType string         `json:"event_type"`
	UserID    string         `json:"user_id,omitempty"`
	Query     string         `json:"query"`
	QueryType string         `json:"query_type,omitempty"`
	Success   bool           `json:"success"`
	Duration  time.Duration  `json:"duration,omitempty"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// AuditLogger keeps a bounded in-memory ring of events and appends
// each one as a JSON line to the log file.
type AuditLogger struct {
	mutex   sync.RWMutex
	events  []AuditEvent
	maxSize int
	logFile *os.File
	encoder *json.Encoder
}

// NewAuditLogger creates an audit logger. An empty logFile disables
// the file sink; events are then kept in memory only.
func NewAuditLogger(logFile string, maxSize int) *AuditLogger {
	if maxSize <= 0 {
		maxSize = 1000
	}
	logger := &AuditLogger{maxSize: maxSize}
	if logFile != "" {
		if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			logger.logFile = f
			logger.encoder = json.NewEncoder(f)
		} else {
			log.Printf("Warning: Failed to open audit log file: %v", err)
		}
	}
	return logger
}

// LogQuery records a received query.
func (al *AuditLogger) LogQuery(userID, query string) {
	al.logEvent(AuditEvent{
		Timestamp: time.Now(),
		EventType: "query_received",
		UserID:    userID,
		Query:     query,
		Success:   true,
	})
}

// LogResult records a completed query.
func (al *AuditLogger) LogResult(userID, query string, result Result, duration time.Duration) {
	al.logEvent(AuditEvent{
		Timestamp: time.Now(),
		EventType: "query_completed",
		UserID:    userID,
		Query:     query,
		QueryType: result.QueryType,
		Success:   result.Success,
		Duration:  duration,
		Error:     result.Error,
	})
}

// LogConfirmation records a confirmation round-trip.
func (al *AuditLogger) LogConfirmation(userID, query, confirmationType string) {
	al.logEvent(AuditEvent{
		Timestamp: time.Now(),
		EventType: "confirmation_asked",
		UserID:    userID,
		Query:     query,
		Success:   true,
		Metadata:  map[string]any{"confirmation_type": confirmationType},
	})
}

func (al *AuditLogger) logEvent(event AuditEvent) {
	al.mutex.Lock()
	defer al.mutex.Unlock()

	al.events = append(al.events, event)
	if len(al.events) > al.maxSize {
		al.events = al.events[len(al.events)-al.maxSize:]
	}
	if al.encoder != nil {
		if err := al.encoder.Encode(event); err != nil {
			log.Printf("Warning: Failed to write audit log: %v", err)
		}
	}
	if !event.Success {
		log.Printf("AUDIT: %s - %s (success: %t)", event.EventType, event.Query, event.Success)
	}
}

// GetEvents returns the most recent events, newest last.
func (al *AuditLogger) GetEvents(limit int) []AuditEvent {
	al.mutex.RLock()
	defer al.mutex.RUnlock()
	if limit <= 0 || limit > len(al.events) {
		limit = len(al.events)
	}
	start := len(al.events) - limit
	events := make([]AuditEvent, limit)
	copy(events, al.events[start:])
	return events
}

// GetFailedQueries returns recent failed events, newest first.
func (al *AuditLogger) GetFailedQueries(limit int) []AuditEvent {
	al.mutex.RLock()
	defer al.mutex.RUnlock()
	events := make([]AuditEvent, 0)
	for i := len(al.events) - 1; i >= 0 && len(events) < limit; i-- {
		if !al.events[i].Success {
			events = append(events, al.events[i])
		}
	}
	return events
}

// GetStatistics summarizes the retained events.
func (al *AuditLogger) GetStatistics() map[string]any {
	al.mutex.RLock()
	defer al.mutex.RUnlock()

	stats := make(map[string]any)
	eventTypeCount := make(map[string]int)
	successCount := 0
	totalDuration := time.Duration(0)
	queryCount := 0
	for _, event := range al.events {
		eventTypeCount[event.EventType]++
		if event.Success {
			successCount++
		}
		if event.EventType == "query_completed" {
			totalDuration += event.Duration
			queryCount++
		}
	}
	stats["total_events"] = len(al.events)
	stats["event_types"] = eventTypeCount
	stats["success_count"] = successCount
	stats["error_count"] = len(al.events) - successCount
	if len(al.events) > 0 {
		stats["success_rate"] = float64(successCount) / float64(len(al.events))
	}
	if queryCount > 0 {
		stats["average_query_duration"] = totalDuration / time.Duration(queryCount)
	}
	return stats
}

// Close releases the file sink.
func (al *AuditLogger) Close() {
	al.mutex.Lock()
	defer al.mutex.Unlock()
	if al.logFile != nil {
		al.logFile.Close()
		al.logFile = nil
		al.encoder = nil
	}
}
