package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lead-dialogue-engine/internal/dialogue"
	"github.com/lead-dialogue-engine/internal/jsonx"
	"github.com/lead-dialogue-engine/internal/knowledge"
	"github.com/lead-dialogue-engine/internal/lead"
	"github.com/lead-dialogue-engine/internal/session"
)

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	Greeting  string `json:"greeting"`
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type messageResponse struct {
	SessionID string `json:"session_id"`
	dialogue.Result
}

type leadResponse struct {
	SessionID string    `json:"session_id"`
	Lead      lead.Data `json:"lead"`
}

type reloadResponse struct {
	Version  int64 `json:"version"`
	Products int   `json:"products"`
	FAQs     int   `json:"faqs"`
}

type statsResponse struct {
	session.Stats
	KnowledgeVersion int64  `json:"knowledge_version"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	Company          string `json:"company"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, greeting := s.registry.Create()
	s.writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: id, Greeting: greeting})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := jsonx.Decode(r.Body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(req.Message) > maxMessageLen {
		s.writeError(w, http.StatusBadRequest, "message too long")
		return
	}

	res, err := s.registry.Process(req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.Error("process message", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{SessionID: req.SessionID, Result: res})
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ld, err := s.registry.Lead(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.writeJSON(w, http.StatusOK, leadResponse{SessionID: id, Lead: ld})
}

func (s *Server) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			s.writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = n
	}

	matches := s.kb.RelevantProducts(query, limit)
	if matches == nil {
		matches = []knowledge.ProductMatch{}
	}
	s.writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleKnowledgeReload(w http.ResponseWriter, r *http.Request) {
	if s.kbPath == "" {
		s.writeError(w, http.StatusConflict, "knowledge reload is disabled")
		return
	}

	ctx, err := knowledge.LoadFile(s.kbPath)
	if err != nil {
		s.logger.Error("knowledge reload failed", zap.String("path", s.kbPath), zap.Error(err))
		s.writeError(w, http.StatusUnprocessableEntity, "knowledge file rejected: "+err.Error())
		return
	}

	s.kb.Swap(ctx)
	s.writeJSON(w, http.StatusOK, reloadResponse{
		Version:  s.kb.Version(),
		Products: len(ctx.Products),
		FAQs:     len(ctx.FAQs),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statsResponse{
		Stats:            s.registry.Stats(),
		KnowledgeVersion: s.kb.Version(),
		UptimeSeconds:    int64(time.Since(s.started).Seconds()),
		Company:          s.kb.Current().Company.Name,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := jsonx.Encode(w, v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
