// Package command implements the REPL's command layer: a few built-in
// commands plus pass-through of everything else to the assistant.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"pharmassist/internal/assistant"
	"pharmassist/internal/jsonutil"
	"pharmassist/internal/store"
)

// ReplState tracks the interactive session.
type ReplState struct {
	UserID string
}

// Handler executes one line of REPL input.
type Handler struct {
	Agent *assistant.Agent
	Store *store.FileStore
	State *ReplState
	Out   io.Writer // defaults to os.Stdout

	// QueryTimeout bounds a single assistant turn. Zero means 60s.
	QueryTimeout time.Duration
}

func (h *Handler) out() io.Writer {
	if h.Out != nil {
		return h.Out
	}
	return os.Stdout
}

// Execute runs one input line. It returns false when the user asked to
// exit, true otherwise.
func (h *Handler) Execute(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return true
	}
	switch strings.ToLower(input) {
	case "exit", "quit":
		return false
	case "help", "commands":
		h.printCommands()
		return true
	case "history":
		h.printHistory()
		return true
	case "stats":
		h.printStats()
		return true
	case "activity":
		h.printActivity()
		return true
	case "clear":
		fmt.Fprint(h.out(), "\033[2J\033[H")
		return true
	}

	timeout := h.QueryTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result := h.Agent.ProcessQuery(ctx, input, h.State.UserID)
	h.printResult(result)
	return true
}

func (h *Handler) printResult(result assistant.Result) {
	w := h.out()
	fmt.Fprintln(w, result.Response)
	if len(result.Data) > 0 {
		if pretty := jsonutil.PrettyPrintValue(result.Data); pretty != "" {
			fmt.Fprintln(w, pretty)
		}
	}
	for _, s := range result.Suggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}
}

func (h *Handler) printCommands() {
	w := h.out()
	fmt.Fprintln(w, "Built-in commands:")
	fmt.Fprintln(w, "  help      Show this help")
	fmt.Fprintln(w, "  history   Show your recent conversation turns")
	fmt.Fprintln(w, "  stats     Show query statistics")
	fmt.Fprintln(w, "  activity  Show recent activity log entries")
	fmt.Fprintln(w, "  clear     Clear the screen")
	fmt.Fprintln(w, "  exit      Leave the assistant")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Example questions:")
	for _, cmd := range h.Agent.SupportedCommands() {
		fmt.Fprintf(w, "  %s\n", cmd)
	}
}

func (h *Handler) printHistory() {
	w := h.out()
	turns := h.Agent.History(h.State.UserID, 10)
	if len(turns) == 0 {
		fmt.Fprintln(w, "No conversation history yet.")
		return
	}
	for _, turn := range turns {
		fmt.Fprintf(w, "You: %s\n", turn.UserQuery)
		fmt.Fprintf(w, "Assistant: %s\n", turn.Response)
	}
}

func (h *Handler) printStats() {
	w := h.out()
	stats := h.Agent.AuditStatistics()
	if pretty := jsonutil.PrettyPrintValue(stats); pretty != "" {
		fmt.Fprintln(w, pretty)
		return
	}
	fmt.Fprintf(w, "%v\n", stats)
}

func (h *Handler) printActivity() {
	w := h.out()
	entries, err := h.Store.Recent(20, store.ActivityFilter{})
	if err != nil {
		fmt.Fprintf(w, "Failed to read activity log: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No activity recorded yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-8s %-12s %s by %s\n",
			e.Timestamp, e.Action, e.EntityType, e.EntityID, e.UserID)
	}
}
