package assistant

import (
	"context"
	"fmt"
	"time"
)

// Result is the uniform outcome of every interpreter turn. Failures
// are carried as data; handlers never panic and never return Go
// errors for domain-level problems.
type Result struct {
	Success  bool           `json:"success"`
	Response string         `json:"response"`
	Data     map[string]any `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`

	QueryType      string `json:"query_type,omitempty"`
	OriginalQuery  string `json:"original_query,omitempty"`
	CorrectedQuery string `json:"corrected_query,omitempty"`

	AwaitingConfirmation  bool   `json:"awaiting_confirmation,omitempty"`
	ConfirmationType      string `json:"confirmation_type,omitempty"`
	ConfirmationProcessed bool   `json:"confirmation_processed,omitempty"`
	Choice                string `json:"choice,omitempty"`

	RequiresConfirmation bool           `json:"requires_confirmation,omitempty"`
	ConfirmationData     map[string]any `json:"confirmation_data,omitempty"`

	Suggestions   []string      `json:"suggestions,omitempty"`
	ExecutionTime time.Duration `json:"execution_time,omitempty"`
}

// successResult wraps a rendered response and optional payload.
func successResult(response string, data map[string]any) Result {
	return Result{Success: true, Response: response, Data: data}
}

// errorResult wraps a domain failure message.
func errorResult(response string) Result {
	return Result{Success: false, Response: response}
}

// Handler processes one or more command types against the store.
type Handler interface {
	// CanHandle reports whether the handler serves the query type.
	CanHandle(queryType string) bool
	// Handle executes the query. input is the corrected user text,
	// userID identifies the requesting user for audit entries.
	Handle(ctx context.Context, queryType, input, userID string) Result
	// SupportedQueryTypes lists the types this handler serves.
	SupportedQueryTypes() []string
}

// Registry routes command types to handlers. Registration is
// append-only; when several handlers claim the same type, the first
// one registered wins at dispatch time.
type Registry struct {
	handlers []Handler
	byType   map[string][]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string][]Handler)}
}

// Register appends a handler. It never replaces an existing handler
// for a shared query type.
func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
	for _, qt := range h.SupportedQueryTypes() {
		r.byType[qt] = append(r.byType[qt], h)
	}
}

// CanHandle reports whether any handler serves the query type.
func (r *Registry) CanHandle(queryType string) bool {
	return len(r.byType[queryType]) > 0
}

// Dispatch routes the query to the first registered handler for its
// type. An unroutable type yields a structured failure, not an error.
func (r *Registry) Dispatch(ctx context.Context, queryType, input, userID string) Result {
	handlers := r.byType[queryType]
	if len(handlers) == 0 {
		return errorResult(fmt.Sprintf("No handler found for query type: %s", queryType))
	}
	return handlers[0].Handle(ctx, queryType, input, userID)
}

// SupportedQueryTypes returns the union of all registered types, in
// registration order, without duplicates.
func (r *Registry) SupportedQueryTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, h := range r.handlers {
		for _, qt := range h.SupportedQueryTypes() {
			if !seen[qt] {
				seen[qt] = true
				types = append(types, qt)
			}
		}
	}
	return types
}
