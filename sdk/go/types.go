package lde

import "fmt"

// Session is the result of opening a conversation.
type Session struct {
	SessionID string `json:"session_id"`
	Greeting  string `json:"greeting"`
}

// TurnResult is the engine's reply for one message.
type TurnResult struct {
	SessionID  string     `json:"session_id"`
	Response   string     `json:"response"`
	Intent     string     `json:"intent"`
	IntentName string     `json:"intent_name"`
	Confidence float64    `json:"confidence"`
	Engagement string     `json:"engagement"`
	Lead       LeadRecord `json:"lead"`
	// CapturedData holds only the fields this turn's message yielded.
	CapturedData LeadRecord `json:"captured_data"`
	Captured     bool       `json:"captured"`
}

// LeadRecord mirrors the lead fields the engine captures. Field names follow
// the Brazilian Portuguese wire format used by the CRM.
type LeadRecord struct {
	Nome      string   `json:"nome,omitempty"`
	Telefone  string   `json:"telefone,omitempty"`
	Email     string   `json:"email,omitempty"`
	Interesse []string `json:"interesse,omitempty"`
	Orcamento string   `json:"orcamento,omitempty"`
	Cidade    string   `json:"cidade,omitempty"`
	Prazo     string   `json:"prazo,omitempty"`
	Source    string   `json:"source,omitempty"`
}

// ProductMatch is one catalog search hit.
type ProductMatch struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}

// Product is one catalog entry.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       string   `json:"price,omitempty"`
	Keywords    []string `json:"keywords"`
	Active      bool     `json:"active"`
}

// ReloadResult reports a successful knowledge-base reload.
type ReloadResult struct {
	Version  int64 `json:"version"`
	Products int   `json:"products"`
	FAQs     int   `json:"faqs"`
}

// Stats are the server-side counters.
type Stats struct {
	ActiveSessions   int    `json:"active_sessions"`
	SessionsCreated  int64  `json:"sessions_created"`
	MessagesTotal    int64  `json:"messages_total"`
	CapturedTurns    int64  `json:"captured_turns"`
	FallbackTurns    int64  `json:"fallback_turns"`
	KnowledgeVersion int64  `json:"knowledge_version"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	Company          string `json:"company"`
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type apiError struct {
	Message string `json:"error"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}
