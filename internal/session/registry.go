// Package session tracks live conversations. Each session owns one dialogue
// manager plus the lead record accumulated so far; the registry is bounded,
// evicting the least recently used session when full.
package session

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/lead-dialogue-engine/internal/dialogue"
	"github.com/lead-dialogue-engine/internal/lead"
)

// ErrNotFound is returned for unknown or evicted session ids.
var ErrNotFound = errors.New("session not found")

// DefaultCapacity bounds the registry when the caller passes zero.
const DefaultCapacity = 1024

type session struct {
	// sem serializes turns: a Manager is single-threaded per session, and a
	// channel semaphore keeps eviction callbacks free of lock ordering issues.
	sem      chan struct{}
	mgr      *dialogue.Manager
	lead     lead.Data
	created  time.Time
	lastSeen time.Time
}

func (s *session) lock()   { s.sem <- struct{}{} }
func (s *session) unlock() { <-s.sem }

// Registry is a bounded, concurrency-safe collection of live sessions.
type Registry struct {
	sessions *lru.Cache[string, *session]
	kb       dialogue.Provider
	logger   *zap.Logger
	opts     []dialogue.Option

	createdTotal  atomic.Int64
	messagesTotal atomic.Int64
	capturedTotal atomic.Int64
	fallbackTotal atomic.Int64
}

// Stats is a point-in-time snapshot of registry counters.
type Stats struct {
	ActiveSessions  int   `json:"active_sessions"`
	SessionsCreated int64 `json:"sessions_created"`
	MessagesTotal   int64 `json:"messages_total"`
	// CapturedTurns counts turns that yielded at least one lead field;
	// FallbackTurns counts turns the classifier could not place.
	CapturedTurns int64 `json:"captured_turns"`
	FallbackTurns int64 `json:"fallback_turns"`
}

// NewRegistry creates a registry over the given knowledge provider. Manager
// options are applied to every session it creates.
func NewRegistry(kb dialogue.Provider, capacity int, logger *zap.Logger, opts ...dialogue.Option) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	logger = logger.Named("session")

	cache, err := lru.NewWithEvict(capacity, func(id string, s *session) {
		logger.Info("session evicted",
			zap.String("session_id", id),
			zap.Time("last_seen", s.lastSeen))
	})
	if err != nil {
		return nil, err
	}
	return &Registry{sessions: cache, kb: kb, logger: logger, opts: opts}, nil
}

// Create mints a new session and returns its id together with the greeting
// the client should display.
func (r *Registry) Create() (string, string) {
	id := uuid.NewString()
	now := time.Now()
	s := &session{
		sem:      make(chan struct{}, 1),
		mgr:      dialogue.NewManager(r.kb, r.logger, r.opts...),
		created:  now,
		lastSeen: now,
	}
	r.sessions.Add(id, s)
	r.createdTotal.Add(1)
	r.logger.Debug("session created", zap.String("session_id", id))
	return id, s.mgr.Greeting()
}

// Process runs one turn for the session. Turns for the same session are
// serialized; different sessions proceed in parallel.
func (r *Registry) Process(id, message string) (dialogue.Result, error) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return dialogue.Result{}, ErrNotFound
	}

	s.lock()
	defer s.unlock()

	res := s.mgr.ProcessMessage(message, s.lead)
	s.lead = res.UpdatedLead
	s.lastSeen = time.Now()

	r.messagesTotal.Add(1)
	if res.Captured {
		r.capturedTotal.Add(1)
	}
	if res.IntentID == dialogue.IntentFallback {
		r.fallbackTotal.Add(1)
	}
	return res, nil
}

// Lead returns the lead record captured so far for the session.
func (r *Registry) Lead(id string) (lead.Data, error) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return lead.Data{}, ErrNotFound
	}
	s.lock()
	defer s.unlock()
	return s.lead, nil
}

// FollowUpNudge returns a proactive re-engagement message for the session,
// or false when none applies.
func (r *Registry) FollowUpNudge(id string) (string, bool, error) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return "", false, ErrNotFound
	}
	s.lock()
	defer s.unlock()
	msg, ok := s.mgr.FollowUpNudge(s.lead)
	return msg, ok, nil
}

// Remove drops the session, if present.
func (r *Registry) Remove(id string) {
	r.sessions.Remove(id)
}

// Stats reports registry counters.
func (r *Registry) Stats() Stats {
	return Stats{
		ActiveSessions:  r.sessions.Len(),
		SessionsCreated: r.createdTotal.Load(),
		MessagesTotal:   r.messagesTotal.Load(),
		CapturedTurns:   r.capturedTotal.Load(),
		FallbackTurns:   r.fallbackTotal.Load(),
	}
}
