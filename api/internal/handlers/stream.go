package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cyber-dashboard/internal/model"
	"cyber-dashboard/internal/session"
	"cyber-dashboard/internal/source"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	streamPingInterval = 30 * time.Second
	streamWriteTimeout = 10 * time.Second
	streamReadTimeout  = 2 * streamPingInterval
)

type streamMessage struct {
	Type    string            `json:"type"`
	Client  string            `json:"client,omitempty"`
	Message string            `json:"message,omitempty"`
	View    *model.AttackView `json:"view,omitempty"`
}

// StreamView keeps a WebSocket open on which the client sends criteria and
// receives the re-derived view after each change.
func (h *Handlers) StreamView(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	h.metrics.StreamClients.Inc()
	defer h.metrics.StreamClients.Dec()
	h.logger.Infof("View stream %s connected from %s", clientID, r.RemoteAddr)
	defer h.logger.Debugf("View stream %s closed", clientID)

	conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(streamPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	current := h.manager.Current()
	if err := h.writeView(conn, clientID, current, current.Criteria(), ""); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debugf("View stream %s read error: %v", clientID, err)
			}
			return
		}

		var req criteriaRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := h.writeStream(conn, streamMessage{Type: "error", Client: clientID, Message: "Invalid criteria"}); err != nil {
				return
			}
			continue
		}

		s := h.manager.Current()
		applied := s.SetCriteria(req.criteria())
		if err := h.writeView(conn, clientID, s, applied, req.Search); err != nil {
			return
		}
	}
}

func (h *Handlers) writeView(conn *websocket.Conn, clientID string, s *session.Session, c model.FilterCriteria, search string) error {
	view, err := s.View(c, search)
	if err != nil {
		msg := "loading"
		if errors.Is(err, source.ErrLoad) {
			msg = LoadErrorMessage
		}
		return h.writeStream(conn, streamMessage{Type: "error", Client: clientID, Message: msg})
	}
	h.metrics.RecordFilter("stream", view.Matched)
	return h.writeStream(conn, streamMessage{Type: "view", Client: clientID, View: &view})
}

func (h *Handlers) writeStream(conn *websocket.Conn, msg streamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debugf("WebSocket write error: %v", err)
		return err
	}
	return nil
}
