package dialogue

import (
	"math/rand"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/lead-dialogue-engine/internal/extract"
	"github.com/lead-dialogue-engine/internal/knowledge"
	"github.com/lead-dialogue-engine/internal/lead"
)

// Provider hands out the active knowledge context. Satisfied by
// *knowledge.Snapshot; tests pass a fixed context instead.
type Provider interface {
	Current() *knowledge.Context
}

// Result is the outcome of one processed message.
type Result struct {
	Response    string          `json:"response"`
	IntentID    string          `json:"intent"`
	IntentName  string          `json:"intent_name"`
	Confidence  float64         `json:"confidence"`
	Engagement  EngagementLevel `json:"engagement"`
	UpdatedLead lead.Data       `json:"lead"`
	// CapturedData holds only what this turn's message yielded; UpdatedLead
	// is the merged record.
	CapturedData lead.Data `json:"captured_data"`
	Captured     bool      `json:"captured"`
}

// Confidence scoring weights. Confidence is a presentation signal for the
// operator dashboard, not a gate: every message gets a reply regardless.
const (
	confidenceBase        = 0.5
	confidencePriorityW   = 0.3
	confidenceNonFallback = 0.2
	confidenceLongReply   = 0.1
	confidenceUnresolved  = 0.3
	longReplyRunes        = 50
)

// refineProductScore is the relevance a product match must reach for a
// generic product inquiry to be narrowed to that specific product.
const refineProductScore = 0.6

// Manager runs the dialogue for one session. It owns the session State and
// mutates it exactly once per ProcessMessage call; the lead record is owned
// by the caller and passed through each turn. A Manager is not safe for
// concurrent use, callers serialize per session.
type Manager struct {
	kb      Provider
	gen     *Generator
	intents []*Intent
	state   *State
	logger  *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithIntents replaces the built-in classification table.
func WithIntents(intents []*Intent) Option {
	return func(m *Manager) { m.intents = intents }
}

// WithRandSource fixes the random source behind response embellishment.
func WithRandSource(src rand.Source) Option {
	return func(m *Manager) { m.gen = NewGenerator(src) }
}

// NewManager creates a session manager over the given knowledge provider.
func NewManager(kb Provider, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		kb:      kb,
		gen:     NewGenerator(rand.NewSource(time.Now().UnixNano())),
		intents: DefaultIntents(),
		state:   NewState(),
		logger:  logger.Named("dialogue"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State exposes the session state for transports that report it. Read-only
// for callers.
func (m *Manager) State() *State {
	return m.state
}

// Greeting renders the session-opening message for the active knowledge base.
func (m *Manager) Greeting() string {
	return Greeting(m.kb.Current())
}

// ProcessMessage runs one full turn: extract lead data, track product
// mentions, classify, update state, render the reply and score confidence.
func (m *Manager) ProcessMessage(message string, current lead.Data) Result {
	kb := m.kb.Current()
	st := m.state

	extracted := extract.Extract(message)
	merged := lead.Merge(current, extracted)

	mentioned := knowledge.DetectMentionedProducts(message, kb.Products)
	for _, p := range mentioned {
		st.noteProducts([]string{p.Name})
		merged.Interesse = lead.AppendInterest(merged.Interesse, p.Name)
	}

	it := Classify(message, st, m.intents)
	it = m.refine(it, message, kb)

	st.MessageCount++
	st.LastIntent = st.CurrentIntent
	st.CurrentIntent = it.ID
	st.AskedQuestions[it.ID] = true
	st.ToneOfVoice = kb.AI.ToneOfVoice
	st.bumpEngagement()

	text, unresolved := m.gen.Generate(it, st, merged, kb, message)
	m.recomputeAwaiting(it, merged)

	confidence := scoreConfidence(it, text, unresolved)

	m.logger.Debug("turn processed",
		zap.String("intent", it.ID),
		zap.Float64("confidence", confidence),
		zap.Int("message_count", st.MessageCount),
		zap.Bool("captured", !extracted.IsEmpty()),
		zap.String("engagement", string(st.Engagement)))

	return Result{
		Response:     text,
		IntentID:     it.ID,
		IntentName:   it.Name,
		Confidence:   confidence,
		Engagement:   st.Engagement,
		UpdatedLead:  merged,
		CapturedData: extracted,
		Captured:     !extracted.IsEmpty(),
	}
}

// refine narrows the classified intent using the knowledge base: a generic
// product inquiry becomes a specific-product intent when exactly one product
// clearly matches, and a fallback becomes an FAQ answer when an FAQ entry is
// relevant to the message.
func (m *Manager) refine(it *Intent, message string, kb *knowledge.Context) *Intent {
	switch it.ID {
	case IntentProductInquiry:
		matches := knowledge.FindRelevantProducts(message, kb.Products, 2)
		if len(matches) == 0 || matches[0].Score < refineProductScore {
			return it
		}
		if len(matches) > 1 && matches[1].Score >= matches[0].Score {
			return it
		}
		if specific := findIntent(m.intents, IntentSpecificProduct); specific != nil {
			return specific
		}
	case IntentFallback:
		if _, ok := knowledge.FindRelevantFAQ(message, kb.FAQs); ok {
			if faq := findIntent(m.intents, IntentFAQ); faq != nil {
				return faq
			}
		}
	}
	return it
}

// recomputeAwaiting records which field the reply just asked for, so the next
// turn can expect it. Only contact-gathering intents ask for data; any other
// intent clears the marker.
func (m *Manager) recomputeAwaiting(it *Intent, ld lead.Data) {
	switch it.ID {
	case IntentProvideName, IntentProvideContact, IntentScheduleVisit:
		switch {
		case ld.Nome == "":
			m.state.AwaitingData = AwaitName
		case ld.Telefone == "":
			m.state.AwaitingData = AwaitPhone
		case ld.Email == "":
			m.state.AwaitingData = AwaitEmail
		default:
			m.state.AwaitingData = AwaitNone
		}
	default:
		m.state.AwaitingData = AwaitNone
	}
}

// FollowUpNudge suggests a proactive message for an idle session: ask for the
// phone once a named lead has been chatting a while, or tie the nudge to a
// recorded interest. The second return is false when no nudge applies.
func (m *Manager) FollowUpNudge(ld lead.Data) (string, bool) {
	if ld.Telefone != "" {
		return "", false
	}
	if ld.Nome != "" && m.state.MessageCount >= 3 {
		return firstName(ld.Nome) + ", me passa seu telefone com DDD? Assim nossa equipe consegue te atender mais rápido. 😊", true
	}
	if len(ld.Interesse) > 0 {
		return "Vi que você se interessou por " + ld.Interesse[0] + ". Quer deixar um telefone pra gente te passar mais detalhes?", true
	}
	return "", false
}

func scoreConfidence(it *Intent, reply string, unresolved bool) float64 {
	c := confidenceBase + float64(it.Priority)/10*confidencePriorityW
	if !it.IsFallback() {
		c += confidenceNonFallback
	}
	if utf8.RuneCountInString(reply) > longReplyRunes {
		c += confidenceLongReply
	}
	if unresolved {
		c -= confidenceUnresolved
	}
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return c
}
