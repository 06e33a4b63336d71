package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	orchestration "github.com/speakbright/agent-core/core"
	"github.com/speakbright/agent-core/core/agents"
	"github.com/speakbright/agent-core/core/datachannel"
	"github.com/speakbright/agent-core/core/texttospeech"
	"github.com/speakbright/agent-core/core/texttospeech/deepgram"
	"github.com/speakbright/agent-core/core/voices"
)

// closingVoiceFor maps the frontend's gender preference onto the synthesis
// voice used for the goodbye utterance.
func closingVoiceFor(genderPreference string) deepgram.Voice {
	switch genderPreference {
	case "male":
		return deepgram.VoiceOrion
	case "female":
		return deepgram.VoiceLuna
	default:
		return deepgram.VoiceAsteria
	}
}

// sessionManager owns the active sessions of this worker process.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*orchestration.Session

	factory     *agents.Factory
	hub         *datachannel.Hub
	rooms       orchestration.RoomService
	synthesizer texttospeech.Synthesizer

	baseContext context.Context
}

func newSessionManager(ctx context.Context, factory *agents.Factory, hub *datachannel.Hub, rooms orchestration.RoomService, synthesizer texttospeech.Synthesizer) *sessionManager {
	return &sessionManager{
		sessions:    make(map[string]*orchestration.Session),
		factory:     factory,
		hub:         hub,
		rooms:       rooms,
		synthesizer: synthesizer,
		baseContext: ctx,
	}
}

// Create builds an agent for the requested type, wires a session around it,
// and starts it.
func (m *sessionManager) Create(room, agentType string, metadata map[string]any) (*orchestration.Session, string, error) {
	agent, err := m.factory.Create(agentType, metadata)
	if err != nil {
		return nil, "", err
	}

	genderPreference := ""
	if agentContext := agent.Context(); agentContext != nil {
		genderPreference = agentContext.GenderPreference()
	}
	realtimeVoice := voices.Select(genderPreference)

	opts := []orchestration.SessionOption{
		orchestration.WithPublisher(m.hub.RoomPublisher(room)),
	}
	if m.rooms != nil {
		opts = append(opts, orchestration.WithRoomService(m.rooms))
	}
	if m.synthesizer != nil {
		opts = append(opts, orchestration.WithSpeaker(orchestration.TTSSpeaker{
			Synthesizer: m.synthesizer,
			Voice:       string(closingVoiceFor(genderPreference)),
		}))
	}

	s, err := orchestration.NewSession(room, agent, opts...)
	if err != nil {
		return nil, "", err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	s.Start(m.baseContext)
	go func() {
		<-s.Done()
		m.mu.Lock()
		delete(m.sessions, s.ID())
		m.mu.Unlock()
	}()

	return s, realtimeVoice, nil
}

func (m *sessionManager) Get(id string) (*orchestration.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *sessionManager) List() []*orchestration.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*orchestration.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	return list
}

// End gracefully ends one session.
func (m *sessionManager) End(ctx context.Context, id string) error {
	s, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("unknown session %q", id)
	}
	s.EndSession(ctx)
	return nil
}

// Drain gracefully ends every active session, waiting up to the deadline
// for goodbyes to play out. Sessions still running afterwards are aborted.
func (m *sessionManager) Drain(ctx context.Context) {
	active := m.List()
	if len(active) == 0 {
		return
	}
	slog.Info("draining active sessions", "count", len(active))

	var wg sync.WaitGroup
	for _, s := range active {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.EndSession(ctx)
			select {
			case <-s.Done():
			case <-ctx.Done():
				s.Close()
			}
		}()
	}

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		slog.Info("all sessions drained")
	case <-time.After(DrainTimeout):
		slog.Warn("drain timed out, aborting remaining sessions")
		for _, s := range m.List() {
			s.Close()
		}
	}
}
