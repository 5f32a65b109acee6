package assistant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PendingConfirmation is the per-user state of an unanswered
// clarification question.
type PendingConfirmation struct {
	OriginalQuery  string
	CorrectedQuery string
	Type           string // multi_entity, single_entity, general
	Options        []clarificationOption
	CreatedAt      time.Time
}

// SessionStore holds pending confirmations per user. Implementations
// must be safe for concurrent use.
type SessionStore interface {
	Get(userID string) (*PendingConfirmation, bool)
	Put(userID string, pending *PendingConfirmation)
	Delete(userID string)
}

// memorySessionStore is the default in-process SessionStore.
type memorySessionStore struct {
	mu      sync.RWMutex
	pending map[string]*PendingConfirmation
}

// NewMemorySessionStore creates an in-memory session store.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{pending: make(map[string]*PendingConfirmation)}
}

func (m *memorySessionStore) Get(userID string) (*PendingConfirmation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pending[userID]
	return p, ok
}

func (m *memorySessionStore) Put(userID string, pending *PendingConfirmation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[userID] = pending
}

func (m *memorySessionStore) Delete(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, userID)
}

var generalQueryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`show.*everything`),
	regexp.MustCompile(`tell.*me.*about`),
	regexp.MustCompile(`what.*can.*you.*do`),
	regexp.MustCompile(`help.*me`),
	regexp.MustCompile(`i.*want.*to.*know`),
	regexp.MustCompile(`give.*me.*information`),
}

var actionKeywords = []string{
	"count", "how many", "list", "show", "analyze", "compare",
	"find", "search", "get", "display", "total",
}

// ConfirmationEngine decides when a query is too ambiguous to run,
// asks a lettered clarification question, and resolves the reply.
type ConfirmationEngine struct {
	sessions   SessionStore
	catalog    *PatternCatalog
	corrector  *Corrector
	classifier *IntentClassifier
	ttl        time.Duration
	now        func() time.Time
}

// NewConfirmationEngine wires the engine. A zero ttl disables expiry.
func NewConfirmationEngine(sessions SessionStore, catalog *PatternCatalog, corrector *Corrector, classifier *IntentClassifier, ttl time.Duration) *ConfirmationEngine {
	return &ConfirmationEngine{
		sessions:   sessions,
		catalog:    catalog,
		corrector:  corrector,
		classifier: classifier,
		ttl:        ttl,
		now:        time.Now,
	}
}

// HasPending reports whether the user has an unexpired pending
// confirmation. Expired entries are dropped on sight.
func (e *ConfirmationEngine) HasPending(userID string) bool {
	p, ok := e.sessions.Get(userID)
	if !ok {
		return false
	}
	if e.ttl > 0 && e.now().Sub(p.CreatedAt) > e.ttl {
		e.sessions.Delete(userID)
		return false
	}
	return true
}

// NeedsConfirmation reports whether a (corrected) query is ambiguous:
// multiple entities, a very general phrasing, a single entity with no
// action verb, or no entity and no recognizable intent. Mutating
// commands are never ambiguous here; destructive ones carry their own
// literal-phrase confirmation instead.
func (e *ConfirmationEngine) NeedsConfirmation(corrected string) bool {
	if isMutatingType(e.catalog.Identify(corrected)) {
		return false
	}
	mentions := countEntityMentions(corrected)
	if len(mentions) > 1 || e.isGeneralQuery(corrected) {
		return true
	}
	if len(mentions) == 1 && !hasSpecificAction(corrected) {
		return true
	}
	if len(mentions) == 0 && e.classifier.IdentifyIntent(corrected) == "" {
		return true
	}
	return false
}

func (e *ConfirmationEngine) isGeneralQuery(text string) bool {
	lower := strings.ToLower(text)
	for _, re := range generalQueryPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func hasSpecificAction(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range actionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// AskConfirmation stores a pending confirmation for the user and
// returns the clarification question. A newer ambiguous query simply
// overwrites any previous pending entry.
func (e *ConfirmationEngine) AskConfirmation(userID, original, corrected string) Result {
	mentions := countEntityMentions(corrected)
	var (
		question string
		ctype    string
		opts     []clarificationOption
	)
	switch {
	case len(mentions) > 1:
		ctype = "multi_entity"
		question, opts = e.multiEntityQuestion(corrected)
	case len(mentions) == 1:
		ctype = "single_entity"
		for entity := range mentions {
			question, opts = e.singleEntityQuestion(entity)
		}
		if opts == nil {
			ctype = "general"
			question, opts = e.generalQuestion()
		}
	default:
		ctype = "general"
		question, opts = e.generalQuestion()
	}

	e.sessions.Put(userID, &PendingConfirmation{
		OriginalQuery:  original,
		CorrectedQuery: corrected,
		Type:           ctype,
		Options:        opts,
		CreatedAt:      e.now(),
	})

	return Result{
		Success:              true,
		Response:             question,
		AwaitingConfirmation: true,
		ConfirmationType:     ctype,
		OriginalQuery:        original,
		CorrectedQuery:       corrected,
	}
}

// multiEntityQuestion builds the menu for queries that mention more
// than one entity type, plus "All of the above" and "Something else".
func (e *ConfirmationEngine) multiEntityQuestion(corrected string) (string, []clarificationOption) {
	entities := ExtractEntities(corrected)
	var b strings.Builder
	b.WriteString("I see you're asking about multiple things. Which would you like to focus on?\n\n")
	opts := make([]clarificationOption, 0, len(entities)+2)
	for i, entity := range entities {
		letter := string(rune('a' + i))
		opts = append(opts, clarificationOption{
			Letter:      letter,
			Description: titleCase(entity) + " information",
			Followup:    "list all " + entity,
		})
		fmt.Fprintf(&b, "**(%s)** %s information\n", letter, titleCase(entity))
	}
	allLetter := string(rune('a' + len(entities)))
	opts = append(opts, clarificationOption{Letter: allLetter, Description: "All of the above", Followup: "complete database overview"})
	fmt.Fprintf(&b, "**(%s)** All of the above\n", allLetter)
	elseLetter := string(rune('a' + len(entities) + 1))
	opts = append(opts, clarificationOption{Letter: elseLetter, Description: "Something else"})
	fmt.Fprintf(&b, "**(%s)** Something else\n\n", elseLetter)
	b.WriteString("Please type the letter of your choice (a, b, c, etc.)")
	return b.String(), opts
}

// singleEntityQuestion builds the catalog-driven a-f menu for one
// entity type.
func (e *ConfirmationEngine) singleEntityQuestion(entityType string) (string, []clarificationOption) {
	opts := e.catalog.ClarificationOptions(entityType)
	if len(opts) == 0 {
		return "", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "I understand you want to know about %s. What specifically would you like to see?\n\n", entityType)
	for _, opt := range opts {
		fmt.Fprintf(&b, "**(%s)** %s\n", opt.Letter, opt.Description)
	}
	b.WriteString("\nPlease type the letter of your choice (a, b, c, etc.)")
	return b.String(), opts
}

// generalQuestion lists every entity type plus a database overview.
func (e *ConfirmationEngine) generalQuestion() (string, []clarificationOption) {
	var b strings.Builder
	b.WriteString("I'd be happy to help! What would you like to know about?\n\n")
	types := EntityTypes()
	opts := make([]clarificationOption, 0, len(types)+2)
	for i, entity := range types {
		letter := string(rune('a' + i))
		opts = append(opts, clarificationOption{
			Letter:      letter,
			Description: titleCase(entity),
			Followup:    "list all " + entity,
		})
		fmt.Fprintf(&b, "**(%s)** %s\n", letter, titleCase(entity))
	}
	overviewLetter := string(rune('a' + len(types)))
	opts = append(opts, clarificationOption{Letter: overviewLetter, Description: "General database overview", Followup: "complete database overview"})
	fmt.Fprintf(&b, "**(%s)** General database overview\n", overviewLetter)
	elseLetter := string(rune('a' + len(types) + 1))
	opts = append(opts, clarificationOption{Letter: elseLetter, Description: "Something else"})
	fmt.Fprintf(&b, "**(%s)** Something else\n\n", elseLetter)
	b.WriteString("Please type the letter of your choice (a, b, c, etc.)")
	return b.String(), opts
}

// Resolution is the outcome of processing a confirmation reply.
type Resolution struct {
	// Invalid carries the invalid-choice result when set.
	Invalid *Result
	// Followup is the query to re-run on behalf of the user.
	Followup string
	// Acknowledgement is returned when a choice has no followup query.
	Acknowledgement string
	// Choice is the resolved option letter, "" for descriptive replies.
	Choice string
	// Pending is the confirmation that was consumed.
	Pending *PendingConfirmation
}

const invalidChoiceResponse = "Invalid choice. Please select a valid option (a, b, c, etc.)"

// ProcessResponse consumes the user's pending confirmation. A single
// letter picks that option; digits map 1..26 to a..z; anything else is
// treated as a fresh descriptive query (after spelling correction).
// Returns nil when the user has nothing pending.
func (e *ConfirmationEngine) ProcessResponse(userID, response string) *Resolution {
	pending, ok := e.sessions.Get(userID)
	if !ok {
		return nil
	}
	if e.ttl > 0 && e.now().Sub(pending.CreatedAt) > e.ttl {
		e.sessions.Delete(userID)
		return nil
	}

	reply := strings.ToLower(strings.TrimSpace(response))

	if len(reply) == 1 && reply[0] >= 'a' && reply[0] <= 'z' {
		return e.resolveLetter(userID, reply, pending)
	}
	if reply != "" && isDigits(reply) {
		n, _ := strconv.Atoi(reply)
		if n >= 1 && n <= 26 {
			return e.resolveLetter(userID, string(rune('a'+n-1)), pending)
		}
		e.sessions.Delete(userID)
		return &Resolution{Invalid: &Result{Success: false, Response: invalidChoiceResponse}}
	}

	// Descriptive reply: correct it and run it as a new query.
	e.sessions.Delete(userID)
	return &Resolution{
		Followup: e.corrector.CorrectSpelling(response),
		Pending:  pending,
	}
}

func (e *ConfirmationEngine) resolveLetter(userID, letter string, pending *PendingConfirmation) *Resolution {
	for _, opt := range pending.Options {
		if opt.Letter != letter {
			continue
		}
		e.sessions.Delete(userID)
		res := &Resolution{Choice: letter, Pending: pending}
		if opt.Followup != "" {
			res.Followup = opt.Followup
		} else {
			res.Acknowledgement = fmt.Sprintf("You selected option '%s'. Processing your request...", letter)
		}
		return res
	}
	// Out-of-menu letter: report the invalid choice and clear the
	// pending entry so the user is not stuck.
	e.sessions.Delete(userID)
	return &Resolution{Invalid: &Result{Success: false, Response: invalidChoiceResponse}}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
