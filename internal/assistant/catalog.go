// Package assistant implements the conversational command interpreter
// for the pharmacy system: spelling correction, intent classification,
// ordered pattern matching, multi-turn confirmation and handler
// dispatch.
package assistant

import "strings"

// entityKeyword maps an entity type to the words that mention it.
// Order matters: extraction and clarification menus follow this order.
type entityKeyword struct {
	Type     string
	Keywords []string
}

var entityKeywords = []entityKeyword{
	{"medicines", []string{"medicine", "medication", "drug", "pill", "tablet", "med"}},
	{"patients", []string{"patient", "person", "individual", "case", "client"}},
	{"suppliers", []string{"supplier", "vendor", "provider", "company"}},
	{"departments", []string{"department", "dept", "division", "section", "unit"}},
	{"stores", []string{"store", "storage", "warehouse", "inventory"}},
	{"purchases", []string{"purchase", "buy", "order", "procurement"}},
	{"consumption", []string{"consumption", "usage", "use", "taken", "consumed"}},
	{"transfers", []string{"transfer", "move", "shift", "relocate"}},
}

// medicalTerms groups the vocabulary the spelling corrector matches
// against. Variations within a group are all valid corrections.
var medicalTerms = []struct {
	Category string
	Terms    []string
}{
	{"medicine", []string{"medicine", "medication", "drug", "pill", "tablet", "capsule", "med", "meds"}},
	{"patient", []string{"patient", "person", "individual", "case", "client"}},
	{"supplier", []string{"supplier", "vendor", "provider", "company", "distributor"}},
	{"department", []string{"department", "dept", "division", "section", "unit", "ward"}},
	{"store", []string{"store", "storage", "warehouse", "inventory", "stock"}},
	{"purchase", []string{"purchase", "buy", "order", "procurement", "acquisition"}},
	{"consumption", []string{"consumption", "usage", "use", "taken", "consumed", "dispensed"}},
	{"transfer", []string{"transfer", "move", "shift", "relocate", "transport"}},
	{"stock", []string{"stock", "inventory", "quantity", "amount", "level"}},
	{"analysis", []string{"analysis", "report", "summary", "overview", "breakdown"}},
	{"count", []string{"count", "number", "total", "amount", "quantity", "how many"}},
	{"list", []string{"list", "show", "display", "give", "provide", "get"}},
	{"all", []string{"all", "every", "complete", "entire", "full", "total"}},
	{"highest", []string{"highest", "maximum", "most", "top", "largest", "biggest"}},
	{"lowest", []string{"lowest", "minimum", "least", "bottom", "smallest"}},
	{"expired", []string{"expired", "expiring", "expiry", "expire", "outdated"}},
	{"low", []string{"low", "running out", "shortage", "insufficient", "depleted"}},
	{"high", []string{"high", "abundant", "plenty", "sufficient", "excess"}},
}

var abbreviations = map[string]string{
	"med":   "medicine",
	"meds":  "medicines",
	"pt":    "patient",
	"pts":   "patients",
	"dept":  "department",
	"depts": "departments",
	"qty":   "quantity",
	"amt":   "amount",
	"inv":   "inventory",
	"exp":   "expired",
	"supp":  "supplier",
	"supps": "suppliers",
}

// EntityTypes returns the known entity types in catalog order.
func EntityTypes() []string {
	types := make([]string, len(entityKeywords))
	for i, e := range entityKeywords {
		types[i] = e.Type
	}
	return types
}

// ExtractEntities returns the entity types mentioned in the text, in
// catalog order, without duplicates.
func ExtractEntities(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, e := range entityKeywords {
		for _, kw := range e.Keywords {
			if strings.Contains(lower, kw) {
				found = append(found, e.Type)
				break
			}
		}
	}
	return found
}

// countEntityMentions counts keyword hits per entity type.
func countEntityMentions(text string) map[string]int {
	lower := strings.ToLower(text)
	mentions := make(map[string]int)
	for _, e := range entityKeywords {
		count := 0
		for _, kw := range e.Keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > 0 {
			mentions[e.Type] = count
		}
	}
	return mentions
}

// ExpandAbbreviations rewrites known shorthand words (med, dept, qty)
// to their full forms. Non-abbreviated words pass through untouched.
func ExpandAbbreviations(text string) string {
	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		if full, ok := abbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}
