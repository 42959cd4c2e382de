package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sampleYAML = `
company:
  name: Segurança Total
  description: Automação e segurança residencial
  hours: segunda a sexta, das 8h às 18h
  phone: (11) 4002-8922
ai:
  tone_of_voice: friendly
  greeting: "Olá! Bem-vindo à ${companyName}. Como posso ajudar?"
products:
  - id: prod-1
    name: Portão Automático
    description: Portão basculante com motor rápido
    category: Automação
    price: a partir de R$ 3.500
    keywords: [portão, motor]
    active: true
faqs:
  - id: faq-1
    question: Qual o horário de atendimento?
    answer: Atendemos de segunda a sexta, das 8h às 18h.
    category: atendimento
    keywords: [horário, atendimento]
`

func TestParseKnowledgeYAML(t *testing.T) {
	ctx, err := Parse([]byte(sampleYAML))

	require.NoError(t, err)
	assert.Equal(t, "Segurança Total", ctx.Company.Name)
	require.Len(t, ctx.Products, 1)
	assert.True(t, ctx.Products[0].IsActive)
	assert.Equal(t, []string{"portão", "motor"}, ctx.Products[0].Keywords)
	require.Len(t, ctx.FAQs, 1)
	assert.Equal(t, "friendly", ctx.AI.ToneOfVoice)
}

func TestParseRejectsMissingCompanyName(t *testing.T) {
	_, err := Parse([]byte("company:\n  description: sem nome\n"))
	assert.Error(t, err)
}

func TestParseRejectsDuplicateProductID(t *testing.T) {
	_, err := Parse([]byte(`
company:
  name: X
products:
  - id: p1
    name: A
  - id: p1
    name: B
`))
	assert.Error(t, err)
}

func TestParseDefaultsGreetingAndTone(t *testing.T) {
	ctx, err := Parse([]byte("company:\n  name: X\n"))

	require.NoError(t, err)
	assert.NotEmpty(t, ctx.AI.Greeting)
	assert.Equal(t, "friendly", ctx.AI.ToneOfVoice)
}

func TestSnapshotSwapInvalidatesCache(t *testing.T) {
	first, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	snap, err := NewSnapshot(first, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer snap.Close()

	matches := snap.RelevantProducts("portão automático", 5)
	require.NotEmpty(t, matches)
	assert.Equal(t, int64(1), snap.Version())

	second := *first
	second.Products = nil
	snap.Swap(&second)

	assert.Equal(t, int64(2), snap.Version())
	assert.Empty(t, snap.RelevantProducts("portão automático", 5))
}
