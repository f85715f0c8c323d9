package papers

import (
	"regexp"
	"sort"
	"strings"
)

// stopwords are excluded from keyword extraction. The set covers common
// English function words plus academic boilerplate that says nothing about
// a paper's topic.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "up": {}, "about": {}, "into": {}, "through": {}, "during": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {},
	"did": {}, "will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "can": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"we": {}, "our": {}, "use": {}, "using": {}, "based": {}, "approach": {},
	"method": {}, "paper": {}, "propose": {}, "proposed": {}, "show": {},
}

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// Tokenize lowercases text and returns its alphabetic tokens, dropping
// stopwords and anything shorter than three characters.
func Tokenize(text string) []string {
	raw := wordPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, skip := stopwords[t]; skip {
			continue
		}
		if len(t) <= 2 {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// TopKeywords returns the k most frequent tokens of the abstract, most
// frequent first. Ties keep first-occurrence order, so extraction is
// deterministic for a given abstract.
func TopKeywords(abstract string, k int) []string {
	tokens := Tokenize(abstract)

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := make([]string, 0)
	for i, t := range tokens {
		if _, seen := counts[t]; !seen {
			firstSeen[t] = i
			order = append(order, t)
		}
		counts[t]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		ci, cj := counts[order[i]], counts[order[j]]
		if ci != cj {
			return ci > cj
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > k {
		order = order[:k]
	}
	return order
}
