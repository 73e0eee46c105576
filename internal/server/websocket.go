package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) Add(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[gameID]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[gameID] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[gameID]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, gameID)
	}
}

func (h *wsHub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

// Broadcast is fire-and-forget: a failed write drops that connection
// and never fails the request that triggered it.
func (h *wsHub) Broadcast(gameID string, payload any) {
	h.mu.Lock()
	group := h.groups[gameID]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(gameID, conn)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseWebsocketPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	snap, exists := s.gameSnapshot(gameID)
	if !exists {
		http.NotFound(w, r)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.log.Infow("ws connected", "game_id", gameID, "remote", r.RemoteAddr)
	s.ws.Add(gameID, conn)
	s.monitor.IncViewers()
	s.ws.Send(conn, wsEnvelope(eventGameUpdated, map[string]any{
		"game": snap,
	}))
	go s.readWS(gameID, conn)
}

func (s *Server) readWS(gameID string, conn *websocket.Conn) {
	defer func() {
		s.ws.Remove(gameID, conn)
		s.monitor.DecViewers()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.log.Debugw("ws disconnected", "game_id", gameID, "error", err)
			return
		}
	}
}

func wsEnvelope(event string, payload map[string]any) map[string]any {
	return map[string]any{
		"event":   event,
		"payload": payload,
	}
}

// broadcastEvent fans a named event out to the game's viewers. Callers
// build the payload, including the refreshed snapshot under "game",
// inside a store closure; no live state is read here.
func (s *Server) broadcastEvent(gameID, event string, payload map[string]any) {
	if s.ws == nil {
		return
	}
	s.ws.Broadcast(gameID, wsEnvelope(event, payload))
}
