// Package assistant implements the conversational command interpreter
// for the pharmacy database: spelling correction, intent and command
// classification, ambiguity confirmation, and handler dispatch.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"pharmassist/internal/store"
)

// Agent is the top-level driver. It owns the full turn pipeline:
// pending-confirmation resolution, destructive-phrase execution,
// spelling correction, ambiguity detection, classification, dispatch,
// and the LLM fallback for unmatched queries.
type Agent struct {
	config     *Config
	store      Store
	corrector  *Corrector
	classifier *IntentClassifier
	patterns   *PatternCatalog
	confirm    *ConfirmationEngine
	registry   *Registry
	crud       *CRUDHandler
	llm        llms.Model
	audit      *AuditLogger
	memory     *ConversationMemory
	cache      *QueryCache
}

// NewAgent wires the interpreter against a data store. The sessions
// store is injectable so multi-process deployments can share pending
// confirmations.
func NewAgent(ctx context.Context, config *Config, dataStore Store, sessions SessionStore) (*Agent, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if sessions == nil {
		sessions = NewMemorySessionStore()
	}

	corrector := NewCorrector()
	classifier := NewIntentClassifier()
	patterns := NewPatternCatalog(corrector)
	confirm := NewConfirmationEngine(sessions, patterns, corrector, classifier, config.Assistant.Session.PendingTTL)

	crud := NewCRUDHandler(dataStore)
	registry := NewRegistry()
	registry.Register(NewMedicineHandler(dataStore))
	registry.Register(NewEntityHandler(dataStore, patterns))
	registry.Register(NewAnalyticsHandler(dataStore))
	registry.Register(crud)

	model, err := newLLM(ctx, config.Assistant.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	agent := &Agent{
		config:     config,
		store:      dataStore,
		corrector:  corrector,
		classifier: classifier,
		patterns:   patterns,
		confirm:    confirm,
		registry:   registry,
		crud:       crud,
		llm:        model,
	}
	if config.Assistant.Audit.Enable {
		agent.audit = NewAuditLogger(config.Assistant.Audit.LogFile, config.Assistant.Audit.MaxSize)
	}
	if config.Assistant.Memory.Enable {
		agent.memory = NewConversationMemory(config.Assistant.Memory.MaxSize)
	}
	if config.Assistant.Cache.Enable {
		agent.cache = NewQueryCache(config.Assistant.Cache.MaxSize)
	}
	return agent, nil
}

// Registry exposes the dispatch registry, mainly for tests and for
// surfaces that list supported command types.
func (a *Agent) Registry() *Registry { return a.registry }

// SupportedCommands returns readable example commands.
func (a *Agent) SupportedCommands() []string { return a.patterns.SupportedCommands() }

// History returns the user's recent conversation turns.
func (a *Agent) History(userID string, n int) []ConversationTurn {
	if a.memory == nil {
		return nil
	}
	return a.memory.Recent(userID, n)
}

// AuditEvents returns recent audit events, if auditing is enabled.
func (a *Agent) AuditEvents(limit int) []AuditEvent {
	if a.audit == nil {
		return nil
	}
	return a.audit.GetEvents(limit)
}

// AuditStatistics summarizes the retained audit events.
func (a *Agent) AuditStatistics() map[string]any {
	if a.audit == nil {
		return map[string]any{"total_events": 0}
	}
	return a.audit.GetStatistics()
}

// Close releases agent resources.
func (a *Agent) Close() error {
	if a.audit != nil {
		a.audit.Close()
	}
	return nil
}

// ProcessQuery runs one conversational turn for the user and returns
// the structured result. Failures are data; this method only returns
// results, never panics for well-formed input.
func (a *Agent) ProcessQuery(ctx context.Context, query, userID string) Result {
	start := time.Now()
	if userID == "" {
		userID = "default"
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return errorResult("Please type a question or command, or 'help' to see what I can do.")
	}
	if a.audit != nil {
		a.audit.LogQuery(userID, query)
	}

	result := a.processTurn(ctx, query, userID)
	result.ExecutionTime = time.Since(start)
	if result.OriginalQuery == "" {
		result.OriginalQuery = query
	}

	if a.audit != nil {
		a.audit.LogResult(userID, query, result, result.ExecutionTime)
	}
	if a.memory != nil {
		a.memory.Record(userID, ConversationTurn{
			UserQuery:     query,
			Response:      result.Response,
			QueryType:     result.QueryType,
			ExecutionTime: result.ExecutionTime,
		})
	}
	return result
}

func (a *Agent) processTurn(ctx context.Context, query, userID string) Result {
	// A pending clarification consumes this turn first.
	if a.confirm.HasPending(userID) {
		if res := a.resolvePending(ctx, query, userID); res != nil {
			return *res
		}
	}

	// Literal destructive confirmation phrases execute directly.
	if MatchConfirmPhrase(query) {
		result := a.crud.ExecuteConfirmPhrase(query, userID)
		if a.cache != nil && result.Success {
			a.cache.Invalidate()
		}
		return result
	}

	corrected := a.corrector.CorrectSpelling(query)

	if a.confirm.NeedsConfirmation(corrected) {
		result := a.confirm.AskConfirmation(userID, query, corrected)
		if a.audit != nil {
			a.audit.LogConfirmation(userID, query, result.ConfirmationType)
		}
		return result
	}

	return a.runQuery(ctx, query, corrected, userID)
}

// resolvePending handles the reply to a clarification question. A nil
// return means the reply should continue through the normal pipeline.
func (a *Agent) resolvePending(ctx context.Context, query, userID string) *Result {
	resolution := a.confirm.ProcessResponse(userID, query)
	if resolution == nil {
		return nil
	}
	if resolution.Invalid != nil {
		return resolution.Invalid
	}
	if resolution.Acknowledgement != "" {
		return &Result{
			Success:               true,
			Response:              resolution.Acknowledgement,
			ConfirmationProcessed: true,
			Choice:                resolution.Choice,
		}
	}
	// A chosen option maps to the catalog's unambiguous followup
	// query. A descriptive reply re-enters the full pipeline from the
	// top, so literal confirmation phrases and fresh ambiguity checks
	// still apply to it.
	var result Result
	if resolution.Choice == "" {
		result = a.processTurn(ctx, query, userID)
	} else {
		followup := resolution.Followup
		corrected := a.corrector.CorrectSpelling(followup)
		result = a.runQuery(ctx, followup, corrected, userID)
	}
	result.ConfirmationProcessed = true
	result.Choice = resolution.Choice
	if resolution.Choice != "" && resolution.Pending != nil {
		result.OriginalQuery = resolution.Pending.OriginalQuery
	}
	return &result
}

// runQuery classifies and dispatches a corrected query.
func (a *Agent) runQuery(ctx context.Context, original, corrected, userID string) Result {
	if a.cache != nil {
		if cached, ok := a.cache.Get(corrected); ok {
			cached.OriginalQuery = original
			cached.CorrectedQuery = corrected
			return cached
		}
	}

	queryType := a.patterns.Identify(corrected)
	if queryType == "" {
		return a.unknownQuery(ctx, original, corrected)
	}

	a.logClassified(userID, queryType, corrected)

	result := a.safeDispatch(ctx, queryType, corrected, userID)
	result.QueryType = queryType
	result.OriginalQuery = original
	result.CorrectedQuery = corrected

	if a.cache != nil {
		if result.Success {
			if isMutatingType(queryType) {
				a.cache.Invalidate()
			} else {
				a.cache.Set(corrected, result)
			}
		}
	}
	return result
}

// safeDispatch converts handler panics into failure results so one
// bad query never ends the session.
func (a *Agent) safeDispatch(ctx context.Context, queryType, input, userID string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{
				Success:  false,
				Response: "Something went wrong while processing your request. Please try again.",
				Error:    fmt.Sprintf("panic in handler for %s: %v", queryType, r),
			}
		}
	}()
	return a.registry.Dispatch(ctx, queryType, input, userID)
}

func isMutatingType(queryType string) bool {
	return containsString(crudQueryTypes, queryType)
}

func (a *Agent) logClassified(userID, queryType, corrected string) {
	_ = a.store.Append(store.ActivityEntry{
		UserID:     userID,
		Action:     "AI_COMMAND",
		EntityType: "chatbot",
		Details:    fmt.Sprintf("%s: %s", queryType, corrected),
	})
}

// unknownQuery builds the did-you-mean response, preferring an LLM
// answer when a model is configured.
func (a *Agent) unknownQuery(ctx context.Context, original, corrected string) Result {
	if a.llm != nil {
		llmCtx, cancel := context.WithTimeout(ctx, a.config.Assistant.LLM.Timeout)
		defer cancel()
		if answer, err := generateFallback(llmCtx, a.llm, original); err == nil && answer != "" {
			return Result{
				Success:        true,
				Response:       answer,
				QueryType:      "llm_fallback",
				OriginalQuery:  original,
				CorrectedQuery: corrected,
			}
		}
	}

	suggestions := a.patterns.DidYouMean(corrected)
	var b strings.Builder
	b.WriteString("I'm not sure what you're looking for. Here are some suggestions:\n\n")
	if len(suggestions) > 0 {
		b.WriteString("**Did you mean:**\n")
		for i, s := range suggestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		b.WriteString("\n")
	}
	b.WriteString("**Or try asking about:**\n")
	b.WriteString("• Medicine information (count, list, stock levels, categories)\n")
	b.WriteString("• Patient data (demographics, departments, history)\n")
	b.WriteString("• Supplier information (contacts, performance)\n")
	b.WriteString("• Department analytics (staff, inventory, consumption)\n")
	b.WriteString("• Purchase records (recent, expensive, totals)\n")
	b.WriteString("• Consumption patterns (trends, by patient/medicine)\n")
	b.WriteString("• Transfer records (recent, routes, pending)\n\n")
	b.WriteString("Type 'help' to see all available commands.")

	return Result{
		Success:        false,
		Response:       b.String(),
		QueryType:      "unknown",
		OriginalQuery:  original,
		CorrectedQuery: corrected,
		Suggestions:    suggestions,
	}
}
