package assistant

import (
	"regexp"
	"strings"
)

// Ratio computes sequence similarity in [0, 1] as 2*M/T, where M is
// the total size of the longest matching blocks and T the combined
// length. This reproduces difflib.SequenceMatcher.ratio so the
// documented thresholds (0.6 correct, 0.7 command match) keep their
// original meaning.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matches := 0
	type span struct{ alo, ahi, blo, bhi int }
	b2j := make(map[byte][]int, len(b))
	for j := 0; j < len(b); j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		besti, bestj, bestsize := longestMatch(a, s.alo, s.ahi, s.blo, s.bhi, b2j)
		if bestsize == 0 {
			continue
		}
		matches += bestsize
		if s.alo < besti && s.blo < bestj {
			queue = append(queue, span{s.alo, besti, s.blo, bestj})
		}
		if besti+bestsize < s.ahi && bestj+bestsize < s.bhi {
			queue = append(queue, span{besti + bestsize, s.ahi, bestj + bestsize, s.bhi})
		}
	}
	return 2 * float64(matches) / float64(len(a)+len(b))
}

func longestMatch(a string, alo, ahi, blo, bhi int, b2j map[byte][]int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}

// Corrector corrects misspelled pharmacy vocabulary and matches free
// text against command patterns.
type Corrector struct {
	vocabulary []string
}

// NewCorrector builds a Corrector over the medical-term vocabulary.
func NewCorrector() *Corrector {
	var vocab []string
	for _, group := range medicalTerms {
		vocab = append(vocab, group.Terms...)
	}
	return &Corrector{vocabulary: vocab}
}

const correctionThreshold = 0.6

// stopwords are function words the corrector leaves alone. Without
// this guard short words drift toward vocabulary terms ("how" to
// "show") and correction stops being idempotent.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "do": true, "does": true, "did": true,
	"we": true, "i": true, "you": true, "it": true, "in": true,
	"on": true, "at": true, "of": true, "to": true, "for": true,
	"by": true, "and": true, "or": true, "not": true, "with": true,
	"how": true, "many": true, "much": true, "what": true, "which": true,
	"who": true, "when": true, "where": true, "why": true, "have": true,
	"has": true, "had": true, "me": true, "my": true, "our": true,
	"us": true, "your": true, "this": true, "that": true, "there": true,
	"can": true, "could": true, "will": true, "would": true, "should": true,
}

// commandWords are verbs and field labels the command patterns match
// on. They must survive correction verbatim: at the 0.6 threshold the
// vocabulary otherwise swallows them ("delete" scores 0.71 against
// "depleted", "remove" 0.8 against "move", "named" 0.75 against "med")
// and the downstream regexes stop matching.
var commandWords = map[string]bool{
	"add": true, "create": true, "register": true, "insert": true,
	"make": true, "new": true, "update": true, "change": true,
	"modify": true, "edit": true, "set": true, "delete": true,
	"remove": true, "erase": true, "eliminate": true, "destroy": true,
	"compare": true, "comparison": true, "versus": true, "find": true,
	"search": true, "locate": true, "called": true, "named": true,
	"name": true, "medical": true, "history": true, "contact": true,
	"phone": true, "email": true, "gender": true, "male": true,
	"female": true, "age": true, "dosage": true, "form": true,
	"notes": true, "note": true, "type": true, "responsible": true,
	"id": true, "days": true, "day": true, "confirm": true,
	"status": true, "situation": true, "help": true,
}

// CorrectSpelling lowercases the text and replaces each word with its
// closest vocabulary term when the similarity reaches 0.6.
// Abbreviations expand first; stopwords, command words, vocabulary
// words and their plain plurals pass through, which keeps correction
// idempotent.
func (c *Corrector) CorrectSpelling(text string) string {
	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		if full, ok := abbreviations[w]; ok {
			words[i] = full
			continue
		}
		if c.skipCorrection(w) {
			continue
		}
		if best := c.bestTerm(w, correctionThreshold); best != "" {
			words[i] = best
		}
	}
	return strings.Join(words, " ")
}

func (c *Corrector) skipCorrection(word string) bool {
	if stopwords[word] || commandWords[word] || containsString(c.vocabulary, word) {
		return true
	}
	if base := strings.TrimSuffix(word, "s"); base != word {
		if commandWords[base] || containsString(c.vocabulary, base) {
			return true
		}
	}
	return false
}

// bestTerm returns the single-word vocabulary term most similar to
// word at or above the threshold, or "". Ties keep the earlier term.
func (c *Corrector) bestTerm(word string, threshold float64) string {
	best := ""
	bestScore := 0.0
	for _, term := range c.vocabulary {
		if strings.Contains(term, " ") {
			continue
		}
		score := Ratio(word, term)
		if score > bestScore && score >= threshold {
			bestScore = score
			best = term
		}
	}
	return best
}

// SuggestCorrections proposes up to three whole-query rewrites, built
// by substituting each word's top two vocabulary matches.
func (c *Corrector) SuggestCorrections(text string) []string {
	var suggestions []string
	words := strings.Fields(strings.ToLower(text))
	lowered := strings.Join(words, " ")
	for i, w := range words {
		for _, match := range c.wordMatches(w, 2) {
			rewritten := make([]string, len(words))
			copy(rewritten, words)
			rewritten[i] = match
			suggestion := strings.Join(rewritten, " ")
			if suggestion != lowered && !containsString(suggestions, suggestion) {
				suggestions = append(suggestions, suggestion)
			}
		}
		if len(suggestions) >= 3 {
			break
		}
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}

// wordMatches returns up to limit vocabulary terms for a word, best
// first. Abbreviation expansions rank ahead of similarity matches.
func (c *Corrector) wordMatches(word string, limit int) []string {
	var matches []string
	if full, ok := abbreviations[word]; ok {
		matches = append(matches, full)
	}
	if c.skipCorrection(word) {
		return matches
	}
	type scored struct {
		term  string
		score float64
	}
	var candidates []scored
	for _, term := range c.vocabulary {
		if strings.Contains(term, " ") {
			continue
		}
		if score := Ratio(word, term); score > 0.5 {
			candidates = append(candidates, scored{term, score})
		}
	}
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j].score > candidates[i].score {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			}
		}
	}
	for _, cand := range candidates {
		if len(matches) >= limit {
			break
		}
		if !containsString(matches, cand.term) {
			matches = append(matches, cand.term)
		}
	}
	return matches
}

var regexMeta = regexp.MustCompile(`[.*+?^${}()|[\]\\]`)

// plainPattern strips regex metacharacters so a pattern can be
// compared against free text.
func plainPattern(pattern string) string {
	plain := regexMeta.ReplaceAllString(pattern, " ")
	return strings.TrimSpace(plain)
}

const fuzzyCommandThreshold = 0.7

// fuzzyMatchCommand finds the command type whose pattern text is most
// similar to the (corrected) input, requiring at least 0.7.
func (c *Corrector) fuzzyMatchCommand(input string, catalog []patternEntry) string {
	corrected := strings.ToLower(c.CorrectSpelling(input))
	best := ""
	bestScore := 0.0
	for _, entry := range catalog {
		for _, raw := range entry.raw {
			score := Ratio(corrected, strings.ToLower(plainPattern(raw)))
			if score > bestScore && score >= fuzzyCommandThreshold {
				bestScore = score
				best = entry.queryType
			}
		}
	}
	return best
}

// DidYouMean collects up to five suggestions for an unmatched query:
// spelling rewrites plus command phrasings with moderate similarity
// (at least 0.4 but below the direct-match threshold).
func (c *Corrector) DidYouMean(input string, catalog []patternEntry) []string {
	suggestions := c.SuggestCorrections(input)
	corrected := strings.ToLower(c.CorrectSpelling(input))
	for _, entry := range catalog {
		for _, raw := range entry.raw {
			plain := plainPattern(raw)
			score := Ratio(corrected, strings.ToLower(plain))
			if score >= 0.4 && score < fuzzyCommandThreshold {
				readable := patternToReadable(plain)
				if !containsString(suggestions, readable) {
					suggestions = append(suggestions, readable)
				}
			}
		}
	}
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}

var multiSpace = regexp.MustCompile(`\s+`)

func patternToReadable(plain string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(plain, " "))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
