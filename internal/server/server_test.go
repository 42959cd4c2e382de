package server

import (
	"bytes"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lead-dialogue-engine/internal/dialogue"
	"github.com/lead-dialogue-engine/internal/jsonx"
	"github.com/lead-dialogue-engine/internal/knowledge"
	"github.com/lead-dialogue-engine/internal/session"
)

const testYAML = `
company:
  name: Acme Portões
  hours: Segunda a sexta, das 8h às 18h
products:
  - id: prod-1
    name: Portão Automático
    description: Portão automático basculante com motor de meio HP.
    category: Portões
    price: a partir de R$ 2.500,00
    keywords: [portão, portão automático, basculante]
    active: true
  - id: prod-2
    name: Cerca Elétrica
    description: Cerca elétrica residencial com central de choque.
    category: Cercas
    keywords: [cerca, cerca elétrica]
    active: true
faqs:
  - id: faq-1
    question: Qual o horário de atendimento?
    answer: Atendemos de segunda a sexta, das 8h às 18h.
    keywords: [horário, atendimento]
ai:
  tone_of_voice: friendly
  greeting: Olá! Bem-vindo à ${companyName}. Como posso ajudar?
`

type serverFixture struct {
	srv    *Server
	ts     *httptest.Server
	kbPath string
}

func newFixture(t *testing.T) *serverFixture {
	t.Helper()

	kbPath := filepath.Join(t.TempDir(), "knowledge.yaml")
	require.NoError(t, os.WriteFile(kbPath, []byte(testYAML), 0o644))

	ctx, err := knowledge.LoadFile(kbPath)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	snap, err := knowledge.NewSnapshot(ctx, logger)
	require.NoError(t, err)
	t.Cleanup(snap.Close)

	reg, err := session.NewRegistry(snap, 64, logger,
		dialogue.WithRandSource(rand.NewSource(1)))
	require.NoError(t, err)

	srv := New(reg, snap, kbPath, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &serverFixture{srv: srv, ts: ts, kbPath: kbPath}
}

func (f *serverFixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := jsonx.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(f.ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, jsonx.Decode(resp.Body, v))
}

func (f *serverFixture) createSession(t *testing.T) string {
	t.Helper()
	resp := f.postJSON(t, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out createSessionResponse
	decodeBody(t, resp, &out)
	require.NotEmpty(t, out.SessionID)
	return out.SessionID
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)

	resp := f.postJSON(t, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out createSessionResponse
	decodeBody(t, resp, &out)
	assert.NotEmpty(t, out.SessionID)
	assert.Contains(t, out.Greeting, "Acme Portões")
}

func TestMessageRoundTrip(t *testing.T) {
	f := newFixture(t)
	id := f.createSession(t)

	resp := f.postJSON(t, "/api/message", messageRequest{SessionID: id, Message: "Oi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out messageResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, id, out.SessionID)
	assert.Equal(t, dialogue.IntentGreeting, out.IntentID)
	assert.Contains(t, out.Response, "Acme Portões")
}

func TestMessageValidation(t *testing.T) {
	f := newFixture(t)
	id := f.createSession(t)

	resp := f.postJSON(t, "/api/message", messageRequest{SessionID: id})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = f.postJSON(t, "/api/message", messageRequest{Message: "Oi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = f.postJSON(t, "/api/message", messageRequest{
		SessionID: id,
		Message:   strings.Repeat("a", maxMessageLen+1),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = f.postJSON(t, "/api/message", messageRequest{SessionID: "unknown", Message: "Oi"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestLeadEndpoint(t *testing.T) {
	f := newFixture(t)
	id := f.createSession(t)

	resp := f.postJSON(t, "/api/message", messageRequest{
		SessionID: id,
		Message:   "Meu nome é João Silva, meu telefone é (11) 98765-4321",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(f.ts.URL + "/api/sessions/" + id + "/lead")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out leadResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "João Silva", out.Lead.Nome)
	assert.Equal(t, "(11) 98765-4321", out.Lead.Telefone)
}

func TestProductSearch(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.ts.URL + "/api/products/search?q=portão+automático")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var matches []knowledge.ProductMatch
	decodeBody(t, resp, &matches)
	require.NotEmpty(t, matches)
	assert.Equal(t, "Portão Automático", matches[0].Product.Name)

	resp, err = http.Get(f.ts.URL + "/api/products/search")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestKnowledgeReload(t *testing.T) {
	f := newFixture(t)

	updated := strings.Replace(testYAML, "name: Acme Portões", "name: Nova Portões", 1)
	require.NoError(t, os.WriteFile(f.kbPath, []byte(updated), 0o644))

	resp := f.postJSON(t, "/api/knowledge/reload", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out reloadResponse
	decodeBody(t, resp, &out)
	assert.EqualValues(t, 2, out.Version)
	assert.Equal(t, 2, out.Products)

	// New sessions greet with the new company name.
	resp = f.postJSON(t, "/api/sessions", nil)
	var created createSessionResponse
	decodeBody(t, resp, &created)
	assert.Contains(t, created.Greeting, "Nova Portões")
}

func TestKnowledgeReloadRejectsBadFile(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, os.WriteFile(f.kbPath, []byte("company: {}\n"), 0o644))
	resp := f.postJSON(t, "/api/knowledge/reload", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestStatsAndHealth(t *testing.T) {
	f := newFixture(t)
	f.createSession(t)

	resp, err := http.Get(f.ts.URL + "/api/stats")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st statsResponse
	decodeBody(t, resp, &st)
	assert.Equal(t, 1, st.ActiveSessions)
	assert.EqualValues(t, 1, st.KnowledgeVersion)
	assert.Equal(t, "Acme Portões", st.Company)

	resp, err = http.Get(f.ts.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestChatSocket(t *testing.T) {
	f := newFixture(t)

	wsURL := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	var greeting wsOutbound
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, jsonx.Unmarshal(payload, &greeting))
	assert.Equal(t, "greeting", greeting.Type)
	assert.NotEmpty(t, greeting.SessionID)
	assert.Contains(t, greeting.Text, "Acme Portões")

	data, err := jsonx.Marshal(wsInbound{Message: "Qual o horário de atendimento?"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))

	var reply wsOutbound
	_, payload, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, jsonx.Unmarshal(payload, &reply))
	assert.Equal(t, "reply", reply.Type)
	assert.Equal(t, dialogue.IntentFAQ, reply.Intent)
	assert.Contains(t, reply.Text, "segunda a sexta")

	// Bare text frames work too.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("Oi")))
	_, payload, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, jsonx.Unmarshal(payload, &reply))
	assert.Equal(t, dialogue.IntentGreeting, reply.Intent)
}
