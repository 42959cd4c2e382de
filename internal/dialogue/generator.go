package dialogue

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	"github.com/valyala/bytebufferpool"

	"github.com/lead-dialogue-engine/internal/knowledge"
	"github.com/lead-dialogue-engine/internal/lead"
	"github.com/lead-dialogue-engine/internal/textnorm"
)

// unresolvedFallback replaces any reply that still carries template syntax,
// so end users never see a literal ${...}.
const unresolvedFallback = "Desculpe, me perdi aqui por um instante. 🙈 Pode repetir de outro jeito?"

// faqMissFallback answers an FAQ-classified message when no FAQ entry clears
// the relevance floor.
const faqMissFallback = "Boa pergunta! Pode me dar um pouco mais de detalhe? Assim te respondo certinho."

var placeholderPattern = regexp.MustCompile(`\$\{([a-zA-Z][a-zA-Z0-9]*)\}`)

// validationPhrases may be prepended to a reply as a light acknowledgment.
var validationPhrases = []string{"Ótimo!", "Perfeito!", "Entendi!", "Legal!", "Certo!"}

// embellishChance is the probability of prepending a validation phrase to a
// reply that does not already start with one.
const embellishChance = 0.4

var casualContractions = strings.NewReplacer(
	"você", "vc",
	"Você", "Vc",
	"está", "tá",
	"Está", "Tá",
	"para ", "pra ",
	"Para ", "Pra ",
)

var exclamationRuns = regexp.MustCompile(`!+`)

// Generator renders the reply for a classified intent. It is owned by one
// Manager; the random source behind the validation embellishment is injected
// so tests can drive both branches deterministically.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator over the given random source.
func NewGenerator(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// Generate renders intent's reply for the current state, lead record and
// knowledge base. The second return reports whether the selected template
// referenced a variable that could not be bound; in that case the returned
// text is the generic fallback and the caller applies a confidence penalty.
func (g *Generator) Generate(it *Intent, st *State, ld lead.Data, kb *knowledge.Context, userMessage string) (string, bool) {
	// FAQ intents short-circuit when nothing in the FAQ list is relevant:
	// rendering ${faqAnswer} would be guaranteed to fail.
	var faqAnswer string
	if it.ID == IntentFAQ {
		match, ok := knowledge.FindRelevantFAQ(userMessage, kb.FAQs)
		if !ok {
			return faqMissFallback, false
		}
		faqAnswer = match.Item.Answer
	}

	tmpl := selectTemplate(it.Responses, st, ld)
	if tmpl == nil {
		return unresolvedFallback, true
	}

	vars := g.buildVariables(it, st, ld, kb, userMessage)
	if faqAnswer != "" {
		vars["faqAnswer"] = faqAnswer
	}

	text, unresolved := substitute(tmpl.Text, vars)
	if unresolved {
		return unresolvedFallback, true
	}

	text = g.embellish(text)

	if tmpl.FollowUp != "" {
		followUp, missing := substitute(tmpl.FollowUp, vars)
		if !missing {
			buf := bytebufferpool.Get()
			buf.WriteString(text)
			buf.WriteByte('\n')
			buf.WriteString(followUp)
			text = buf.String()
			bytebufferpool.Put(buf)
		}
	}

	return applyTone(text, st.ToneOfVoice), false
}

// Greeting renders the configured session-opening message.
func Greeting(kb *knowledge.Context) string {
	text, _ := substitute(kb.AI.Greeting, map[string]string{
		"companyName": kb.Company.Name,
	})
	return text
}

// selectTemplate returns the first template whose declared conditions all
// hold, or the first template in declaration order when none match. The
// unconditional fallback to the first template is deliberate graceful
// degradation: a slightly wrong reply beats no reply.
func selectTemplate(templates []ResponseTemplate, st *State, ld lead.Data) *ResponseTemplate {
	if len(templates) == 0 {
		return nil
	}
	for i := range templates {
		if conditionsHold(templates[i].Conditions, st, ld) {
			return &templates[i]
		}
	}
	return &templates[0]
}

func conditionsHold(c *TemplateConditions, st *State, ld lead.Data) bool {
	if c == nil {
		return true
	}
	for _, f := range c.RequiredFields {
		if !leadFieldPresent(ld, f) {
			return false
		}
	}
	for _, f := range c.ForbiddenFields {
		if leadFieldPresent(ld, f) {
			return false
		}
	}
	if c.MinMessages > 0 && st.MessageCount < c.MinMessages {
		return false
	}
	if c.MaxMessages > 0 && st.MessageCount > c.MaxMessages {
		return false
	}
	if c.ProductMentioned != nil && *c.ProductMentioned != (len(st.MentionedProducts) > 0) {
		return false
	}
	return true
}

func leadFieldPresent(ld lead.Data, field string) bool {
	switch field {
	case "nome":
		return ld.Nome != ""
	case "telefone":
		return ld.Telefone != ""
	case "email":
		return ld.Email != ""
	case "interesse":
		return len(ld.Interesse) > 0
	case "cidade":
		return ld.Cidade != ""
	case "orcamento":
		return ld.Orcamento != ""
	default:
		return false
	}
}

// buildVariables assembles the placeholder map. Universal variables are
// always bound; intent-specific ones are computed on demand.
func (g *Generator) buildVariables(it *Intent, st *State, ld lead.Data, kb *knowledge.Context, userMessage string) map[string]string {
	vars := map[string]string{
		"companyName": kb.Company.Name,
	}

	if ld.Nome != "" {
		vars["name"] = firstName(ld.Nome)
	} else {
		vars["name"] = "você"
	}
	if ld.Telefone != "" {
		vars["phone"] = ld.Telefone
	} else {
		vars["phone"] = "[seu telefone]"
	}
	if ld.Email != "" {
		vars["email"] = ld.Email
	} else {
		vars["email"] = "[seu e-mail]"
	}

	switch it.ID {
	case IntentProductInquiry, IntentSpecificProduct, IntentPriceInquiry:
		if p, ok := g.resolveProduct(st, kb, userMessage); ok {
			vars["productName"] = p.Name
			vars["productDescription"] = p.Description
			if p.Price != "" {
				vars["productPrice"] = p.Price
			} else {
				vars["productPrice"] = "sob consulta"
			}
		}
	case IntentCategoryList:
		if cats := knowledge.ProductCategories(kb.Products); len(cats) > 0 {
			vars["categories"] = joinNatural(cats)
		}
	}

	// Product inquiries with no resolvable product still need categories for
	// the generic template.
	if _, ok := vars["categories"]; !ok {
		if cats := knowledge.ProductCategories(kb.Products); len(cats) > 0 {
			vars["categories"] = joinNatural(cats)
		}
	}

	return vars
}

// resolveProduct finds the product the user is talking about: best match for
// the current message, else the most recently mentioned product.
func (g *Generator) resolveProduct(st *State, kb *knowledge.Context, userMessage string) (knowledge.Product, bool) {
	if matches := knowledge.FindRelevantProducts(userMessage, kb.Products, 1); len(matches) > 0 {
		return matches[0].Product, true
	}
	for i := len(st.MentionedProducts) - 1; i >= 0; i-- {
		name := st.MentionedProducts[i]
		for _, p := range kb.Products {
			if p.IsActive && strings.EqualFold(p.Name, name) {
				return p, true
			}
		}
	}
	return knowledge.Product{}, false
}

// substitute replaces ${var} placeholders from vars. The second return
// reports whether any placeholder had no binding; unresolved placeholders
// are left as literal text for the caller to handle.
func substitute(text string, vars map[string]string) (string, bool) {
	unresolved := false
	out := placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := m[2 : len(m)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		unresolved = true
		return m
	})
	return out, unresolved
}

// applyTone rewrites the rendered text for the configured tone of voice.
// Unknown tones pass through unchanged.
func applyTone(text, tone string) string {
	switch strings.ToLower(tone) {
	case "professional", "formal":
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = strings.TrimSpace(exclamationRuns.ReplaceAllString(stripEmoji(line), "."))
		}
		return strings.Join(lines, "\n")
	case "casual":
		return casualContractions.Replace(text)
	default:
		return text
	}
}

func stripEmoji(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.Is(unicode.So, r) || (r >= 0x1F000 && r <= 0x1FAFF) || r == 0xFE0F {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// embellish occasionally prepends a validation phrase when the reply does
// not already start with one.
func (g *Generator) embellish(text string) string {
	if startsWithValidation(text) {
		return text
	}
	if g.rng.Float64() >= embellishChance {
		return text
	}
	phrase := validationPhrases[g.rng.Intn(len(validationPhrases))]
	return phrase + " " + text
}

func startsWithValidation(text string) bool {
	tn := textnorm.Normalize(text)
	for _, p := range validationPhrases {
		if strings.HasPrefix(tn, textnorm.Normalize(p)) {
			return true
		}
	}
	return false
}

// firstName returns the first word of a captured full name.
func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}

// joinNatural joins items with commas and a final "e": "A, B e C".
func joinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " e " + items[len(items)-1]
	}
}
