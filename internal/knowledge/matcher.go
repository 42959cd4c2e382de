package knowledge

import (
	"sort"
	"strings"

	"github.com/lead-dialogue-engine/internal/textnorm"
)

// ProductMatch pairs a product with its relevance score for a query.
type ProductMatch struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}

// FAQMatch pairs an FAQ entry with its relevance score.
type FAQMatch struct {
	Item  FAQItem `json:"item"`
	Score float64 `json:"score"`
}

// minProductScore is the floor below which a product is considered unrelated.
const minProductScore = 0.2

// minFAQScore is the floor an FAQ entry must exceed to be a candidate answer.
const minFAQScore = 0.4

// FindRelevantProducts scores every active product against the query and
// returns the top maxResults matches, best first. Scores are in [0,1];
// products scoring at or below 0.2 are discarded.
func FindRelevantProducts(query string, products []Product, maxResults int) []ProductMatch {
	qn := textnorm.Normalize(query)
	if qn == "" {
		return nil
	}

	var matches []ProductMatch
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		if score := scoreProduct(qn, p); score > minProductScore {
			matches = append(matches, ProductMatch{Product: p, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

func scoreProduct(qn string, p Product) float64 {
	score := 0.0

	name := textnorm.Normalize(p.Name)
	switch {
	case name == qn:
		score += 0.8
	case name != "" && (strings.Contains(qn, name) || strings.Contains(name, qn)):
		score += 0.6
	default:
		score += 0.2 * float64(sharedWords(qn, name))
	}

	if cat := textnorm.Normalize(p.Category); cat != "" && strings.Contains(qn, cat) {
		score += 0.4
	}

	for _, kw := range p.Keywords {
		k := textnorm.Normalize(kw)
		if k == "" {
			continue
		}
		if strings.Contains(qn, k) || strings.Contains(k, qn) || stemmedWordMatch(qn, k) {
			score += 0.15
		}
	}

	if desc := textnorm.Normalize(p.Description); desc != "" && strings.Contains(desc, qn) {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// FindRelevantFAQ returns the single best FAQ entry for the query, or false
// when nothing clears the relevance floor.
func FindRelevantFAQ(query string, faqs []FAQItem) (FAQMatch, bool) {
	qn := textnorm.Normalize(query)
	if qn == "" {
		return FAQMatch{}, false
	}

	best := FAQMatch{Score: minFAQScore}
	found := false
	for _, f := range faqs {
		score := scoreFAQ(qn, f)
		if score > best.Score {
			best = FAQMatch{Item: f, Score: score}
			found = true
		}
	}
	return best, found
}

func scoreFAQ(qn string, f FAQItem) float64 {
	score := 0.0

	question := textnorm.Normalize(f.Question)
	if question != "" && (question == qn || strings.Contains(question, qn) || strings.Contains(qn, question)) {
		score += 0.7
	} else {
		score += 0.15 * float64(sharedWords(qn, question))
	}

	for _, kw := range f.Keywords {
		k := textnorm.Normalize(kw)
		if k != "" && (strings.Contains(qn, k) || strings.Contains(k, qn)) {
			score += 0.2
		}
	}

	if answer := textnorm.Normalize(f.Answer); answer != "" && strings.Contains(answer, qn) {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// DetectMentionedProducts returns every active product whose normalized name
// appears inside the normalized query, in catalog order. Used to silently
// track interest even when the user is not asking a product question.
func DetectMentionedProducts(query string, products []Product) []Product {
	qn := textnorm.Normalize(query)
	if qn == "" {
		return nil
	}

	var out []Product
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		if name := textnorm.Normalize(p.Name); name != "" && strings.Contains(qn, name) {
			out = append(out, p)
			continue
		}
		// Keyword hits count as mentions too: "vendem portões?" mentions the
		// product whose keyword is "portão" even though the full name never
		// appears. Singular and plural forms compare equal after stemming.
		for _, kw := range p.Keywords {
			if k := textnorm.Normalize(kw); k != "" && stemmedWordMatch(qn, k) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// stemmedWordMatch reports whether any word of the normalized query matches
// any word of the normalized phrase after crude singularization.
func stemmedWordMatch(qn, phrase string) bool {
	for _, pw := range strings.Split(phrase, " ") {
		ps := textnorm.Stem(pw)
		for _, qw := range strings.Split(qn, " ") {
			if len(qw) >= 3 && textnorm.Stem(qw) == ps {
				return true
			}
		}
	}
	return false
}

// ProductCategories lists the distinct categories among active products in
// catalog order.
func ProductCategories(products []Product) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range products {
		if !p.IsActive || p.Category == "" {
			continue
		}
		key := textnorm.Normalize(p.Category)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p.Category)
	}
	return out
}

// sharedWords counts whole words present in both normalized strings. Short
// connective words are skipped so that "de" or "o" never scores.
func sharedWords(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	inB := map[string]bool{}
	for _, w := range strings.Split(b, " ") {
		inB[textnorm.Stem(w)] = true
	}
	count := 0
	for _, w := range strings.Split(a, " ") {
		if len(w) < 3 {
			continue
		}
		s := textnorm.Stem(w)
		if inB[s] {
			count++
			delete(inB, s)
		}
	}
	return count
}
