package store

import (
	"sort"
	"time"
)

// ActivityEntry is one row of the audit history collection.
type ActivityEntry struct {
	ID         string         `json:"id"`
	Timestamp  string         `json:"timestamp"`
	UserID     string         `json:"user_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Details    string         `json:"details,omitempty"`
}

// ActivityFilter narrows Recent results. Zero values match everything.
type ActivityFilter struct {
	UserID     string
	EntityType string
}

// ActivityLog records and reads user activity for the audit trail.
type ActivityLog interface {
	Append(entry ActivityEntry) error
	Recent(limit int, filter ActivityFilter) ([]ActivityEntry, error)
}

// Append writes an activity entry to the history collection. The ID
// and timestamp are assigned here.
func (s *FileStore) Append(entry ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, err := s.load(History)
	if err != nil {
		return err
	}
	entry.ID = generateID(history)
	if entry.Timestamp == "" {
		entry.Timestamp = s.now().Format(time.RFC3339)
	}
	if entry.UserID == "" {
		entry.UserID = "system"
	}
	history = append(history, Record{
		"id":          entry.ID,
		"timestamp":   entry.Timestamp,
		"user_id":     entry.UserID,
		"action":      entry.Action,
		"entity_type": entry.EntityType,
		"entity_id":   entry.EntityID,
		"details":     entry.Details,
	})
	return s.save(History, history)
}

// Recent returns activity entries newest first, after filtering.
func (s *FileStore) Recent(limit int, filter ActivityFilter) ([]ActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, err := s.load(History)
	if err != nil {
		return nil, err
	}
	entries := make([]ActivityEntry, 0, len(history))
	for _, r := range history {
		if filter.UserID != "" && r.Str("user_id") != filter.UserID {
			continue
		}
		if filter.EntityType != "" && r.Str("entity_type") != filter.EntityType {
			continue
		}
		entries = append(entries, ActivityEntry{
			ID:         r.ID(),
			Timestamp:  r.Str("timestamp"),
			UserID:     r.Str("user_id"),
			Action:     r.Str("action"),
			EntityType: r.Str("entity_type"),
			EntityID:   r.Str("entity_id"),
			Details:    r.Str("details"),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
