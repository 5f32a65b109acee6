package command

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmassist/internal/assistant"
	"pharmassist/internal/store"
)

func newTestHandler(t *testing.T) (*Handler, *bytes.Buffer, *store.FileStore) {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)

	config := assistant.DefaultConfig()
	config.Assistant.LLM.Provider = "none"
	config.Assistant.Memory.Enable = true
	agent, err := assistant.NewAgent(context.Background(), config, s, nil)
	require.NoError(t, err)
	t.Cleanup(func() { agent.Close() })

	out := &bytes.Buffer{}
	h := &Handler{
		Agent: agent,
		Store: s,
		State: &ReplState{UserID: "repl-user"},
		Out:   out,
	}
	return h, out, s
}

func TestExecuteExit(t *testing.T) {
	h, _, _ := newTestHandler(t)
	assert.False(t, h.Execute("exit"))
	assert.False(t, h.Execute("quit"))
	assert.False(t, h.Execute("  EXIT  "))
}

func TestExecuteEmptyInput(t *testing.T) {
	h, out, _ := newTestHandler(t)
	assert.True(t, h.Execute("   "))
	assert.Empty(t, out.String())
}

func TestExecuteHelp(t *testing.T) {
	h, out, _ := newTestHandler(t)
	assert.True(t, h.Execute("help"))
	assert.Contains(t, out.String(), "Built-in commands:")
	assert.Contains(t, out.String(), "Example questions:")
}

func TestExecuteQueryPassThrough(t *testing.T) {
	h, out, s := newTestHandler(t)
	_, err := s.Create(store.Medicines, store.Record{"name": "Aspirin", "low_stock_limit": 10})
	require.NoError(t, err)

	assert.True(t, h.Execute("how many medicines do we have"))
	assert.Contains(t, out.String(), "Total Medicines")
}

func TestExecuteHistory(t *testing.T) {
	h, out, _ := newTestHandler(t)

	assert.True(t, h.Execute("history"))
	assert.Contains(t, out.String(), "No conversation history yet.")
	out.Reset()

	h.Execute("how many medicines do we have")
	out.Reset()

	assert.True(t, h.Execute("history"))
	assert.Contains(t, out.String(), "You: how many medicines do we have")
	assert.Contains(t, out.String(), "Assistant:")
}

func TestExecuteActivity(t *testing.T) {
	h, out, s := newTestHandler(t)

	assert.True(t, h.Execute("activity"))
	assert.Contains(t, out.String(), "No activity recorded yet.")
	out.Reset()

	require.NoError(t, s.Append(store.ActivityEntry{
		UserID: "repl-user", Action: "CREATE", EntityType: "medicine", EntityID: "02",
	}))
	assert.True(t, h.Execute("activity"))
	assert.Contains(t, out.String(), "CREATE")
	assert.Contains(t, out.String(), "repl-user")
}

func TestExecuteStats(t *testing.T) {
	h, out, _ := newTestHandler(t)
	assert.True(t, h.Execute("stats"))
	assert.Contains(t, out.String(), "total_events")
}
