package dialogue

import "regexp"

// Intent identifiers. The table in table.go is the single source of truth;
// these constants exist so the manager and tests can refer to entries without
// string literals scattered around.
const (
	IntentGreeting        = "greeting"
	IntentProductInquiry  = "product_inquiry"
	IntentSpecificProduct = "specific_product"
	IntentPriceInquiry    = "price_inquiry"
	IntentCategoryList    = "category_list"
	IntentFAQ             = "faq"
	IntentProvideName     = "provide_name"
	IntentProvideContact  = "provide_contact"
	IntentScheduleVisit   = "schedule_visit"
	IntentThanks          = "thanks"
	IntentGoodbye         = "goodbye"
	IntentFallback        = "fallback"
)

// ContextRequirement is a predicate an intent can declare against the
// conversation state. Satisfied requirements boost the intent's score,
// unsatisfied ones halve it.
type ContextRequirement string

const (
	RequireProductMentioned    ContextRequirement = "product_mentioned"
	RequireOngoingConversation ContextRequirement = "ongoing_conversation"
	RequireAwaitingContact     ContextRequirement = "awaiting_contact"
)

// Intent is one statically configured entry of the classification table.
// Loaded once at startup and never mutated at runtime.
type Intent struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Keywords        []string             `json:"-"`
	Patterns        []*regexp.Regexp     `json:"-"`
	Priority        int                  `json:"priority"`
	RequiresContext []ContextRequirement `json:"-"`
	Responses       []ResponseTemplate   `json:"-"`
}

// IsFallback reports whether this is the designated zero-priority fallback.
func (it *Intent) IsFallback() bool {
	return it.ID == IntentFallback
}

// TemplateConditions gate a response template on what is already known about
// the lead and how far along the conversation is. Zero values mean "no
// constraint".
type TemplateConditions struct {
	// RequiredFields lists lead fields that must be present: "nome",
	// "telefone", "email", "interesse".
	RequiredFields []string
	// ForbiddenFields lists lead fields that must still be missing.
	ForbiddenFields []string
	// MinMessages / MaxMessages bound the session message count.
	MinMessages int
	MaxMessages int
	// ProductMentioned, when set, requires (or forbids) a product mention.
	ProductMentioned *bool
}

// ResponseTemplate is one candidate reply for an intent. Text may contain
// ${variable} placeholders resolved at render time; FollowUp, when present,
// is appended on a new line after rendering.
type ResponseTemplate struct {
	Text       string
	FollowUp   string
	Conditions *TemplateConditions
}

func boolPtr(b bool) *bool { return &b }

// findIntent returns the table entry with the given id, or nil.
func findIntent(intents []*Intent, id string) *Intent {
	for _, it := range intents {
		if it.ID == id {
			return it
		}
	}
	return nil
}
