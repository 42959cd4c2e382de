package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lead-dialogue-engine/internal/jsonx"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// wsInbound is what the chat widget sends per turn. A bare text frame that is
// not JSON is accepted as the message itself.
type wsInbound struct {
	Message string `json:"message"`
}

type wsOutbound struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text,omitempty"`
	Intent    string `json:"intent,omitempty"`
	Error     string `json:"error,omitempty"`
}

// wsConn serializes writes: the ping loop and the turn loop share the
// connection, and gorilla allows only one concurrent writer.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) writeFrame(v any) error {
	data, err := jsonx.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// handleChatSocket runs one chat session over a WebSocket: a fresh session is
// created on connect, the greeting is pushed, then each inbound frame is one
// turn. The session is dropped when the socket closes.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	raw, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer raw.Close()
	conn := &wsConn{conn: raw}

	id, greeting := s.registry.Create()
	defer s.registry.Remove(id)

	log := s.logger.With(zap.String("session_id", id))
	if err := conn.writeFrame(wsOutbound{Type: "greeting", SessionID: id, Text: greeting}); err != nil {
		log.Warn("websocket write failed", zap.Error(err))
		return
	}

	raw.SetReadLimit(maxMessageLen + 256)
	_ = raw.SetReadDeadline(time.Now().Add(wsPongWait))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	pingDone := make(chan struct{})
	defer close(pingDone)
	go pingLoop(conn, pingDone)

	for {
		kind, payload, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		_ = raw.SetReadDeadline(time.Now().Add(wsPongWait))

		var in wsInbound
		if err := jsonx.Unmarshal(payload, &in); err != nil || in.Message == "" {
			in.Message = string(payload)
		}
		if in.Message == "" {
			continue
		}
		if len(in.Message) > maxMessageLen {
			if err := conn.writeFrame(wsOutbound{Type: "error", Error: "message too long"}); err != nil {
				return
			}
			continue
		}

		res, err := s.registry.Process(id, in.Message)
		if err != nil {
			log.Error("websocket turn failed", zap.Error(err))
			return
		}
		out := wsOutbound{
			Type:      "reply",
			SessionID: id,
			Text:      res.Response,
			Intent:    res.IntentID,
		}
		if err := conn.writeFrame(out); err != nil {
			log.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

func pingLoop(conn *wsConn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
