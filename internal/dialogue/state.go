// Package dialogue implements the rule-based conversational engine: intent
// classification over a static table, response templating and the per-session
// state machine that drives one turn per inbound message.
package dialogue

import "strings"

// EngagementLevel is a coarse signal of how deep into the conversation a
// session is. It never decreases within a session.
type EngagementLevel string

const (
	EngagementLow    EngagementLevel = "low"
	EngagementMedium EngagementLevel = "medium"
	EngagementHigh   EngagementLevel = "high"
)

// AwaitingField marks the lead field the assistant asked for last turn.
type AwaitingField string

const (
	AwaitNone  AwaitingField = ""
	AwaitName  AwaitingField = "name"
	AwaitPhone AwaitingField = "phone"
	AwaitEmail AwaitingField = "email"
)

// State is the session-scoped memory of prior turns. One State belongs to
// exactly one Manager and is mutated only by it, once per processed message.
type State struct {
	CurrentIntent     string          `json:"current_intent,omitempty"`
	LastIntent        string          `json:"last_intent,omitempty"`
	AwaitingData      AwaitingField   `json:"awaiting_data,omitempty"`
	MentionedProducts []string        `json:"mentioned_products,omitempty"`
	AskedQuestions    map[string]bool `json:"asked_questions,omitempty"`
	MessageCount      int             `json:"message_count"`
	Engagement        EngagementLevel `json:"engagement"`
	ToneOfVoice       string          `json:"tone_of_voice,omitempty"`
}

// NewState returns the zeroed state a session starts with.
func NewState() *State {
	return &State{
		AskedQuestions: make(map[string]bool),
		Engagement:     EngagementLow,
	}
}

// noteProducts records product mentions, de-duplicated, insertion order kept.
func (s *State) noteProducts(names []string) {
	for _, name := range names {
		seen := false
		for _, have := range s.MentionedProducts {
			if strings.EqualFold(have, name) {
				seen = true
				break
			}
		}
		if !seen {
			s.MentionedProducts = append(s.MentionedProducts, name)
		}
	}
}

// bumpEngagement recomputes the engagement level from the message count and
// the number of distinct intents seen. The thresholds are independent, so
// exceeding either one bumps the level, and the level never goes back down.
func (s *State) bumpEngagement() {
	level := EngagementLow
	switch {
	case s.MessageCount > 10 || len(s.AskedQuestions) > 5:
		level = EngagementHigh
	case s.MessageCount > 5 || len(s.AskedQuestions) > 3:
		level = EngagementMedium
	}
	if rankEngagement(level) > rankEngagement(s.Engagement) {
		s.Engagement = level
	}
}

func rankEngagement(l EngagementLevel) int {
	switch l {
	case EngagementHigh:
		return 2
	case EngagementMedium:
		return 1
	default:
		return 0
	}
}

// meetsAll evaluates an intent's context requirements against the state.
func (s *State) meetsAll(reqs []ContextRequirement) bool {
	for _, r := range reqs {
		if !s.meets(r) {
			return false
		}
	}
	return true
}

func (s *State) meets(r ContextRequirement) bool {
	switch r {
	case RequireProductMentioned:
		return len(s.MentionedProducts) > 0
	case RequireOngoingConversation:
		return s.MessageCount > 0
	case RequireAwaitingContact:
		return s.AwaitingData == AwaitPhone || s.AwaitingData == AwaitEmail
	default:
		return false
	}
}
