package dialogue

import (
	"sort"
	"strings"

	"github.com/lead-dialogue-engine/internal/textnorm"
)

const (
	keywordExactScore     = 2.0
	keywordWordScore      = 1.5
	keywordSubstringScore = 1.0
	keywordWeight         = 0.3
	patternScore          = 1.5
	contextBoost          = 1.2
	contextPenalty        = 0.5
)

type scoredIntent struct {
	intent *Intent
	score  float64
}

// Classify scores every intent in the table against the message and returns
// the best match. Classification is total: when nothing scores above zero the
// zero-priority fallback intent is returned.
//
// Keywords are compared against the normalized message; regex patterns run
// against the original message so they can see real casing and punctuation.
func Classify(message string, st *State, intents []*Intent) *Intent {
	msgN := textnorm.Normalize(message)

	var candidates []scoredIntent
	for _, it := range intents {
		if score := scoreIntent(message, msgN, st, it); score > 0 {
			candidates = append(candidates, scoredIntent{it, score})
		}
	}

	if len(candidates) == 0 {
		if fb := findIntent(intents, IntentFallback); fb != nil {
			return fb
		}
		// A table without a fallback entry is a configuration bug; keep
		// classification total anyway.
		return &Intent{ID: IntentFallback, Name: "fallback"}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].intent.Priority > candidates[j].intent.Priority
	})
	return candidates[0].intent
}

func scoreIntent(original, msgN string, st *State, it *Intent) float64 {
	score := keywordScore(msgN, it.Keywords) * keywordWeight

	for _, p := range it.Patterns {
		if p.MatchString(original) {
			score += patternScore
			break
		}
	}

	if len(it.RequiresContext) > 0 {
		if st.meetsAll(it.RequiresContext) {
			score *= contextBoost
		} else {
			score *= contextPenalty
		}
	}

	return score * float64(it.Priority) / 10
}

// keywordScore sums per-keyword match scores: exact message match counts 2,
// standalone word 1.5, plain substring 1.
func keywordScore(msgN string, keywords []string) float64 {
	total := 0.0
	for _, k := range keywords {
		kn := textnorm.Normalize(k)
		if kn == "" {
			continue
		}
		switch {
		case msgN == kn:
			total += keywordExactScore
		case textnorm.ContainsWord(msgN, kn):
			total += keywordWordScore
		case strings.Contains(msgN, kn):
			total += keywordSubstringScore
		}
	}
	return total
}
