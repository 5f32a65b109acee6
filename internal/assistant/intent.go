package assistant

import "strings"

// intentEntry pairs an intent name with the keywords that signal it.
type intentEntry struct {
	name     string
	keywords []string
}

// IntentClassifier classifies queries into intents, CRUD verbs and
// inventory operations using ordered keyword tables. The first entry
// whose keyword occurs in the text wins.
type IntentClassifier struct {
	intents    []intentEntry
	crud       []intentEntry
	operations []intentEntry
}

// NewIntentClassifier creates a classifier with the standard tables.
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{
		intents: []intentEntry{
			{"count_query", []string{"how many", "count", "total number", "number of"}},
			{"list_query", []string{"list", "show me", "give me", "display", "what are", "what is", "show all"}},
			{"analysis_query", []string{"analyze", "analysis", "breakdown", "summary", "overview", "statistics", "report"}},
			{"comparison_query", []string{"compare", "versus", "vs", "difference between"}},
			{"search_query", []string{"find", "search", "look for", "locate"}},
			{"status_query", []string{"status", "condition", "state", "situation"}},
		},
		crud: []intentEntry{
			{"create", []string{"add", "create", "new", "register", "insert", "make"}},
			{"read", []string{"show", "get", "list", "display", "view", "find"}},
			{"update", []string{"update", "change", "modify", "edit", "set"}},
			{"delete", []string{"delete", "remove", "erase", "eliminate", "destroy"}},
		},
		operations: []intentEntry{
			{"transfer", []string{"transfer", "move", "shift", "relocate", "send to"}},
			{"consume", []string{"consume", "use", "dispense", "take", "administer"}},
			{"purchase", []string{"purchase", "buy", "order", "procure", "acquire"}},
			{"restock", []string{"restock", "refill", "replenish", "add stock"}},
		},
	}
}

func classify(table []intentEntry, text string) string {
	lower := strings.ToLower(text)
	for _, entry := range table {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.name
			}
		}
	}
	return ""
}

// IdentifyIntent returns the query intent, or "" when none matches.
func (c *IntentClassifier) IdentifyIntent(text string) string {
	return classify(c.intents, text)
}

// IdentifyCRUD returns the CRUD verb mentioned in the text, or "".
func (c *IntentClassifier) IdentifyCRUD(text string) string {
	return classify(c.crud, text)
}

// IdentifyOperation returns the inventory operation, or "".
func (c *IntentClassifier) IdentifyOperation(text string) string {
	return classify(c.operations, text)
}

// Intents lists the known query intent names in table order.
func (c *IntentClassifier) Intents() []string {
	names := make([]string, len(c.intents))
	for i, e := range c.intents {
		names[i] = e.name
	}
	return names
}
