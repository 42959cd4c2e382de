package session

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lead-dialogue-engine/internal/dialogue"
	"github.com/lead-dialogue-engine/internal/knowledge"
)

type staticKB struct {
	ctx *knowledge.Context
}

func (s staticKB) Current() *knowledge.Context { return s.ctx }

func testKB() *knowledge.Context {
	return &knowledge.Context{
		Company: knowledge.Company{Name: "Acme Portões"},
		Products: []knowledge.Product{
			{
				ID:       "prod-1",
				Name:     "Portão Automático",
				Category: "Portões",
				Keywords: []string{"portão"},
				IsActive: true,
			},
		},
		AI: knowledge.AIConfig{
			ToneOfVoice: "friendly",
			Greeting:    "Olá! Bem-vindo à ${companyName}. Como posso ajudar?",
		},
	}
}

func newTestRegistry(t *testing.T, capacity int) *Registry {
	t.Helper()
	r, err := NewRegistry(staticKB{testKB()}, capacity, zaptest.NewLogger(t),
		dialogue.WithRandSource(rand.NewSource(1)))
	require.NoError(t, err)
	return r
}

func TestCreateAndProcess(t *testing.T) {
	r := newTestRegistry(t, 8)

	id, greeting := r.Create()
	require.NotEmpty(t, id)
	assert.Contains(t, greeting, "Acme Portões")

	res, err := r.Process(id, "Oi")
	require.NoError(t, err)
	assert.Equal(t, dialogue.IntentGreeting, res.IntentID)

	res, err = r.Process(id, "Meu nome é João Silva")
	require.NoError(t, err)
	assert.Equal(t, "João Silva", res.UpdatedLead.Nome)

	// The lead record persists across turns within the session.
	ld, err := r.Lead(id)
	require.NoError(t, err)
	assert.Equal(t, "João Silva", ld.Nome)
}

func TestProcessUnknownSession(t *testing.T) {
	r := newTestRegistry(t, 8)

	_, err := r.Process("nope", "Oi")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Lead("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionsAreIsolated(t *testing.T) {
	r := newTestRegistry(t, 8)

	a, _ := r.Create()
	b, _ := r.Create()

	_, err := r.Process(a, "Meu nome é Ana")
	require.NoError(t, err)

	ldB, err := r.Lead(b)
	require.NoError(t, err)
	assert.Empty(t, ldB.Nome)
}

func TestEvictionBoundsRegistry(t *testing.T) {
	r := newTestRegistry(t, 2)

	first, _ := r.Create()
	r.Create()
	r.Create()

	assert.Equal(t, 2, r.Stats().ActiveSessions)
	_, err := r.Process(first, "Oi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsCounters(t *testing.T) {
	r := newTestRegistry(t, 8)

	id, _ := r.Create()
	r.Create()
	_, err := r.Process(id, "Oi")
	require.NoError(t, err)
	_, err = r.Process(id, "Meu nome é Ana")
	require.NoError(t, err)
	_, err = r.Process(id, "asdfasdf")
	require.NoError(t, err)

	st := r.Stats()
	assert.Equal(t, 2, st.ActiveSessions)
	assert.EqualValues(t, 2, st.SessionsCreated)
	assert.EqualValues(t, 3, st.MessagesTotal)
	assert.EqualValues(t, 1, st.CapturedTurns)
	assert.EqualValues(t, 1, st.FallbackTurns)
}

func TestRemove(t *testing.T) {
	r := newTestRegistry(t, 8)

	id, _ := r.Create()
	r.Remove(id)

	_, err := r.Process(id, "Oi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentTurnsOnOneSession(t *testing.T) {
	r := newTestRegistry(t, 8)
	id, _ := r.Create()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Process(id, "Oi")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ld, err := r.Lead(id)
	require.NoError(t, err)
	assert.True(t, ld.IsEmpty())
	assert.EqualValues(t, 16, r.Stats().MessagesTotal)
}
