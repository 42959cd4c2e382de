package dialogue

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lead-dialogue-engine/internal/lead"
)

// seed 1 makes the first embellishment roll miss, keeping replies unprefixed.
func newTestGenerator() *Generator {
	return NewGenerator(rand.NewSource(1))
}

func TestGenerateSelectsConditionedTemplate(t *testing.T) {
	g := newTestGenerator()
	kb := testKB()
	it := findIntent(DefaultIntents(), IntentProvideName)
	require.NotNil(t, it)

	text, unresolved := g.Generate(it, NewState(), lead.Data{Nome: "Ana Souza"}, kb, "meu nome é Ana Souza")
	require.False(t, unresolved)
	assert.Contains(t, text, "Ana")
	assert.Contains(t, text, "telefone")

	g = newTestGenerator()
	text, unresolved = g.Generate(it, NewState(),
		lead.Data{Nome: "Ana Souza", Telefone: "(11) 91234-5678"}, kb, "meu nome é Ana Souza")
	require.False(t, unresolved)
	assert.Contains(t, text, "e-mail")
}

func TestGenerateFallsBackToFirstTemplate(t *testing.T) {
	g := newTestGenerator()
	it := &Intent{
		ID: "custom",
		Responses: []ResponseTemplate{
			{Text: "Primeira opção.", Conditions: &TemplateConditions{RequiredFields: []string{"email"}}},
			{Text: "Segunda opção.", Conditions: &TemplateConditions{RequiredFields: []string{"telefone"}}},
		},
	}

	// No condition holds: the first template is used anyway.
	text, unresolved := g.Generate(it, NewState(), lead.Data{}, testKB(), "oi")
	require.False(t, unresolved)
	assert.Contains(t, text, "Primeira opção.")
}

func TestGenerateUnresolvedPlaceholder(t *testing.T) {
	g := newTestGenerator()
	it := &Intent{
		ID:        "custom",
		Responses: []ResponseTemplate{{Text: "Valor: ${variavelInexistente}"}},
	}

	text, unresolved := g.Generate(it, NewState(), lead.Data{}, testKB(), "oi")
	assert.True(t, unresolved)
	assert.NotContains(t, text, "${")
	assert.NotEmpty(t, text)
}

func TestGenerateMissingProductPrice(t *testing.T) {
	g := newTestGenerator()
	kb := testKB()
	it := findIntent(DefaultIntents(), IntentPriceInquiry)
	require.NotNil(t, it)

	st := NewState()
	st.noteProducts([]string{"Cerca Elétrica"})
	text, unresolved := g.Generate(it, st, lead.Data{}, kb, "quanto custa a cerca elétrica?")
	require.False(t, unresolved)
	assert.Contains(t, text, "sob consulta")
}

func TestGenerateFAQMiss(t *testing.T) {
	g := newTestGenerator()
	it := findIntent(DefaultIntents(), IntentFAQ)
	require.NotNil(t, it)

	text, unresolved := g.Generate(it, NewState(), lead.Data{}, testKB(), "vocês emitem nota fiscal?")
	require.False(t, unresolved)
	assert.NotContains(t, text, "${")
	assert.Contains(t, text, "detalhe")
}

func TestGenerateProfessionalTone(t *testing.T) {
	g := newTestGenerator()
	it := findIntent(DefaultIntents(), IntentGreeting)
	require.NotNil(t, it)

	st := NewState()
	st.MessageCount = 1
	st.ToneOfVoice = "professional"
	text, unresolved := g.Generate(it, st, lead.Data{}, testKB(), "Oi")
	require.False(t, unresolved)
	assert.NotContains(t, text, "!")
	assert.NotContains(t, text, "😊")
	assert.Contains(t, text, "Acme Portões")
}

func TestGenerateCasualTone(t *testing.T) {
	g := newTestGenerator()
	it := findIntent(DefaultIntents(), IntentCategoryList)
	require.NotNil(t, it)

	st := NewState()
	st.ToneOfVoice = "casual"
	text, unresolved := g.Generate(it, st, lead.Data{}, testKB(), "o que vocês vendem?")
	require.False(t, unresolved)
	assert.Contains(t, text, "vc quer")
	assert.NotContains(t, text, "você")
}

func TestEmbellishBothBranches(t *testing.T) {
	const base = "Tudo certo com o seu pedido."

	plain, prefixed := 0, 0
	for seed := int64(0); seed < 64; seed++ {
		out := NewGenerator(rand.NewSource(seed)).embellish(base)
		if out == base {
			plain++
			continue
		}
		require.True(t, strings.HasSuffix(out, " "+base), "seed %d produced %q", seed, out)
		phrase := strings.TrimSuffix(out, " "+base)
		assert.Contains(t, validationPhrases, phrase)
		prefixed++
	}
	assert.Positive(t, plain)
	assert.Positive(t, prefixed)
}

func TestEmbellishNeverDoublesValidation(t *testing.T) {
	for seed := int64(0); seed < 32; seed++ {
		g := NewGenerator(rand.NewSource(seed))
		out := g.embellish("Perfeito, anotei seu telefone!")
		assert.Equal(t, "Perfeito, anotei seu telefone!", out)
	}
}

func TestGreetingHelper(t *testing.T) {
	assert.Equal(t, "Olá! Bem-vindo à Acme Portões. Como posso ajudar?", Greeting(testKB()))
}

func TestJoinNatural(t *testing.T) {
	assert.Equal(t, "", joinNatural(nil))
	assert.Equal(t, "Portões", joinNatural([]string{"Portões"}))
	assert.Equal(t, "Portões e Cercas", joinNatural([]string{"Portões", "Cercas"}))
	assert.Equal(t, "Portões, Cercas e Alarmes", joinNatural([]string{"Portões", "Cercas", "Alarmes"}))
}
