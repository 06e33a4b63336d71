package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/speakbright/agent-core/core/agents"
	"github.com/speakbright/agent-core/core/datachannel"
)

var upgrader = websocket.Upgrader{
	// The worker sits behind the platform's ingress; origin policy is
	// enforced there.
	CheckOrigin: func(*http.Request) bool { return true },
}

type httpServer struct {
	registry *agents.Registry
	manager  *sessionManager
	hub      *datachannel.Hub
}

func (s *httpServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /agents", s.handleListAgents)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("POST /sessions/{id}/end", s.handleEndSession)
	mux.HandleFunc("GET /ws", s.handleObserver)
}

func (s *httpServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *httpServer) handleListAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.DescribeAll())
}

type sessionSummary struct {
	ID    string `json:"id"`
	Room  string `json:"room"`
	Agent string `json:"agent"`
	State string `json:"state"`
}

func (s *httpServer) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.manager.List()
	summaries := make([]sessionSummary, 0, len(sessions))
	for _, active := range sessions {
		summaries = append(summaries, sessionSummary{
			ID:    active.ID(),
			Room:  active.Room(),
			Agent: active.Agent().Metadata().Name,
			State: active.State().String(),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

type createSessionRequest struct {
	Room      string         `json:"room"`
	AgentType string         `json:"agentType"`
	Metadata  map[string]any `json:"metadata"`
}

type createSessionResponse struct {
	ID    string `json:"id"`
	Room  string `json:"room"`
	Agent string `json:"agent"`
	Voice string `json:"voice"`
}

func (s *httpServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Room == "" {
		writeError(w, http.StatusBadRequest, "room is required")
		return
	}

	session, voice, err := s.manager.Create(req.Room, req.AgentType, req.Metadata)
	if err != nil {
		slog.Error("failed to create session", "room", req.Room, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		ID:    session.ID(),
		Room:  session.Room(),
		Agent: session.Agent().Metadata().Name,
		Voice: voice,
	})
}

func (s *httpServer) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.manager.End(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// handleObserver subscribes a websocket to a room's session events.
func (s *httpServer) handleObserver(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		writeError(w, http.StatusBadRequest, "room query parameter is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("failed to upgrade observer connection", "error", err)
		return
	}

	client := s.hub.AddClient(room, conn)
	// Reads only serve to detect disconnects; observers never send.
	go func() {
		defer s.hub.RemoveClient(room, client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
