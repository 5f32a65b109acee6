package assistant

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCacheBasics(t *testing.T) {
	qc := NewQueryCache(10)

	_, ok := qc.Get("how many medicines")
	assert.False(t, ok)

	qc.Set("how many medicines", successResult("42 medicines", map[string]any{"count": 42}))
	got, ok := qc.Get("how many medicines")
	require.True(t, ok)
	assert.Equal(t, "42 medicines", got.Response)
	assert.Equal(t, 1, qc.Len())
}

func TestQueryCacheEviction(t *testing.T) {
	qc := NewQueryCache(3)
	for i := 0; i < 3; i++ {
		qc.Set(fmt.Sprintf("q%d", i), successResult(fmt.Sprintf("r%d", i), nil))
	}

	// Touch q0 so q1 becomes the oldest.
	_, ok := qc.Get("q0")
	require.True(t, ok)

	qc.Set("q3", successResult("r3", nil))
	assert.Equal(t, 3, qc.Len())
	_, ok = qc.Get("q1")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = qc.Get("q0")
	assert.True(t, ok)
	_, ok = qc.Get("q3")
	assert.True(t, ok)
}

func TestQueryCacheRejectsNonCacheable(t *testing.T) {
	qc := NewQueryCache(10)

	tests := []struct {
		name   string
		result Result
	}{
		{"failure", errorResult("boom")},
		{"awaiting confirmation", Result{Success: true, AwaitingConfirmation: true}},
		{"requires confirmation", Result{Success: true, RequiresConfirmation: true}},
		{"confirmation processed", Result{Success: true, ConfirmationProcessed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qc.Set("q", tt.result)
			_, ok := qc.Get("q")
			assert.False(t, ok)
		})
	}
}

func TestQueryCacheInvalidate(t *testing.T) {
	qc := NewQueryCache(10)
	qc.Set("a", successResult("ra", nil))
	qc.Set("b", successResult("rb", nil))
	require.Equal(t, 2, qc.Len())

	qc.Invalidate()
	assert.Equal(t, 0, qc.Len())
	_, ok := qc.Get("a")
	assert.False(t, ok)
}

func TestQueryCacheUpdateExisting(t *testing.T) {
	qc := NewQueryCache(10)
	qc.Set("q", successResult("old", nil))
	qc.Set("q", successResult("new", nil))
	got, ok := qc.Get("q")
	require.True(t, ok)
	assert.Equal(t, "new", got.Response)
	assert.Equal(t, 1, qc.Len())
}
