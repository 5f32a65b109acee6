package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifyIntent(t *testing.T) {
	c := NewIntentClassifier()
	tests := []struct {
		name string
		text string
		want string
	}{
		{"count", "how many medicines do we have", "count_query"},
		{"list", "list all patients", "list_query"},
		{"analysis", "analyze the purchase data", "analysis_query"},
		{"comparison", "compare this month versus last", "comparison_query"},
		{"search", "locate the supplier record", "search_query"},
		{"status", "check the status of inventory", "status_query"},
		{"none", "hello there", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IdentifyIntent(tt.text))
		})
	}

	t.Run("first table entry wins for overlapping keywords", func(t *testing.T) {
		// "count" belongs to count_query even when "show" (list_query)
		// also appears, because count_query is declared first.
		assert.Equal(t, "count_query", c.IdentifyIntent("show the count of medicines"))
	})
}

func TestIdentifyCRUD(t *testing.T) {
	c := NewIntentClassifier()
	tests := []struct {
		name string
		text string
		want string
	}{
		{"create", "add a new medicine", "create"},
		{"read", "show the patient record", "read"},
		{"update", "modify the supplier contact", "update"},
		{"delete", "remove this medicine", "delete"},
		{"none", "hello", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IdentifyCRUD(tt.text))
		})
	}

	t.Run("create precedes read for overlapping verbs", func(t *testing.T) {
		// "add" and "show" both present; create is declared first.
		assert.Equal(t, "create", c.IdentifyCRUD("show how to add a patient"))
	})
}

func TestIdentifyOperation(t *testing.T) {
	c := NewIntentClassifier()
	tests := []struct {
		name string
		text string
		want string
	}{
		{"transfer", "transfer stock to emergency", "transfer"},
		{"consume", "dispense 5 units", "consume"},
		{"purchase", "order more aspirin", "purchase"},
		{"restock", "replenish the shelves", "restock"},
		{"none", "list medicines", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IdentifyOperation(tt.text))
		})
	}
}
