// Package orchestration runs voice sessions end to end: it binds an agent's
// checkpoint schedule to a timer, fans observer notifications out through a
// publisher, and drives the graceful shutdown sequence when the session's
// time budget runs out.
package orchestration

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/speakbright/agent-core/core/agents"
	"github.com/speakbright/agent-core/core/session"
	"github.com/speakbright/agent-core/core/texttospeech"
)

// InstructionDeliverer feeds silent instructions to the conversation model.
// The user never sees the instruction text, only its effect on the agent's
// next utterances.
type InstructionDeliverer interface {
	DeliverInstruction(ctx context.Context, instruction string) error
}

// Speaker voices the closing utterance. The utterance must not be
// interruptible by the user.
type Speaker interface {
	SpeakClosing(ctx context.Context, instruction string) (session.PlayoutHandle, error)
}

// RoomService tears down the session's media room, disconnecting every
// remaining participant.
type RoomService interface {
	DeleteRoom(ctx context.Context, name string) error
}

// Session is one running voice conversation: an agent bound to a room, with
// checkpoint monitoring and lifecycle coordination around it.
type Session struct {
	id    string
	room  string
	agent agents.Agent

	config      session.TimingConfig
	timer       *session.Timer
	coordinator *session.Coordinator

	publisher session.Publisher
	deliverer InstructionDeliverer
	speaker   Speaker
	rooms     RoomService

	timerOpts       []session.TimerOption
	coordinatorOpts []session.CoordinatorOption

	baseContext context.Context
	startOnce   sync.Once
	closeOnce   sync.Once
	done        chan struct{}
	doneOnce    sync.Once
}

type SessionOption func(*Session)

// WithPublisher sets the observer notification sink, typically a data
// channel hub bound to the session's room.
func WithPublisher(publisher session.Publisher) SessionOption {
	return func(s *Session) { s.publisher = publisher }
}

// WithInstructionDeliverer sets the sink for silent checkpoint instructions.
func WithInstructionDeliverer(deliverer InstructionDeliverer) SessionOption {
	return func(s *Session) { s.deliverer = deliverer }
}

// WithSpeaker sets the closing utterance speaker.
func WithSpeaker(speaker Speaker) SessionOption {
	return func(s *Session) { s.speaker = speaker }
}

// WithRoomService enables room teardown at session end.
func WithRoomService(rooms RoomService) SessionOption {
	return func(s *Session) { s.rooms = rooms }
}

// WithTimerOptions forwards options to the session's checkpoint timer.
func WithTimerOptions(opts ...session.TimerOption) SessionOption {
	return func(s *Session) { s.timerOpts = append(s.timerOpts, opts...) }
}

// WithCoordinatorOptions forwards options to the lifecycle coordinator.
func WithCoordinatorOptions(opts ...session.CoordinatorOption) SessionOption {
	return func(s *Session) { s.coordinatorOpts = append(s.coordinatorOpts, opts...) }
}

// NewSession builds a session for the given room and agent. The agent's
// timing config is validated here so a broken schedule fails session
// creation instead of surfacing mid-conversation.
func NewSession(room string, agent agents.Agent, opts ...SessionOption) (*Session, error) {
	if room == "" {
		return nil, fmt.Errorf("room name is required")
	}
	if agent == nil {
		return nil, fmt.Errorf("agent is required")
	}

	config := agent.TimingConfig()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config for agent %q: %w", agent.Metadata().Name, err)
	}

	s := &Session{
		id:          uuid.NewString(),
		room:        room,
		agent:       agent,
		config:      config,
		baseContext: context.Background(),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	agentName := agent.Metadata().Name
	s.timer = session.NewTimer(config,
		append([]session.TimerOption{session.WithTimerName(agentName)}, s.timerOpts...)...,
	)
	s.coordinator = session.NewCoordinator(
		session.ShutdownHooks{
			NotifyEnding: s.notifyEnding,
			Speak:        s.speakClosing,
			Teardown:     s.teardown,
		},
		append([]session.CoordinatorOption{
			session.WithCoordinatorName(agentName),
			session.WithTotalDuration(config.MaxDuration),
			session.WithClosingInstruction(agent.ClosingInstruction()),
		}, s.coordinatorOpts...)...,
	)

	return s, nil
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Room() string         { return s.room }
func (s *Session) Agent() agents.Agent  { return s.agent }
func (s *Session) State() session.State { return s.coordinator.State() }

// Done is closed once the session has fully ended, by timeout, manual end,
// or abortive close.
func (s *Session) Done() <-chan struct{} { return s.done }

// Start begins checkpoint monitoring with the current instant as session
// time zero. ctx is the session's base context: cancelling it aborts the
// session without a goodbye.
//
// Contract: call Start at most once per session instance.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.baseContext = ctx

		logger.Info("session started",
			"session", s.id,
			"room", s.room,
			"agent", s.agent.Metadata().Name,
			"budget_seconds", s.config.MaxDuration,
		)

		s.timer.Start(ctx, session.Callbacks{
			OnNotify:     s.publishCheckpoint,
			OnCheckpoint: s.deliverCheckpointInstruction,
			OnTerminal:   s.onTimeout,
			IsActive: func() bool {
				return s.coordinator.State() == session.StateActive
			},
		})

		go func() {
			select {
			case <-ctx.Done():
				s.Close()
			case <-s.done:
			}
		}()
	})
}

// EndSession ends the session early, running the same graceful sequence the
// terminal checkpoint triggers. Reports whether this call performed the
// shutdown; losing a race with the timer is not an error.
func (s *Session) EndSession(ctx context.Context) bool {
	won := s.coordinator.GracefulShutdown(ctx, "")
	if won {
		s.publishStatus(session.StatusEnded, "")
	}
	s.timer.Stop()
	s.finish()
	return won
}

// Close aborts the session without a goodbye: checkpoint monitoring stops,
// the state is forced to ended, and the room is torn down.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.timer.Stop()
		if s.coordinator.ForceEnded() {
			logger.Warn("session closed without graceful shutdown", "session", s.id)
			s.teardown(context.Background())
		}
		s.finish()
	})
}

// Err reports a failure in terminal checkpoint handling, if any.
func (s *Session) Err() error { return s.timer.Err() }

func (s *Session) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

// onTimeout is the terminal checkpoint handler. The shutdown runs on the
// session's base context rather than the timer's, so cancelling the
// checkpoint monitor cannot cut the goodbye playout short.
func (s *Session) onTimeout() error {
	ctx, span := tracer.Start(s.baseContext, "session timeout")
	defer span.End()

	if s.coordinator.GracefulShutdown(ctx, session.ReasonTimeout) {
		s.publishStatus(session.StatusEnded, session.ReasonTimeout)
	}
	s.finish()
	return nil
}

func (s *Session) publishCheckpoint(checkpoint session.Checkpoint, index int) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(session.NewCheckpointEvent(s.config, checkpoint, index))
}

func (s *Session) deliverCheckpointInstruction(checkpoint session.Checkpoint, index int) error {
	if s.deliverer == nil {
		return nil
	}
	if err := s.deliverer.DeliverInstruction(s.baseContext, checkpoint.Instruction); err != nil {
		return fmt.Errorf("failed to deliver checkpoint %d instruction: %w", index+1, err)
	}
	return nil
}

func (s *Session) notifyEnding(reason session.Reason, totalDurationSeconds int) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(session.NewStatusEvent(session.StatusEnding, reason, totalDurationSeconds))
}

func (s *Session) publishStatus(status session.Status, reason session.Reason) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(session.NewStatusEvent(status, reason, s.config.MaxDuration))
}

func (s *Session) speakClosing(ctx context.Context, instruction string) (session.PlayoutHandle, error) {
	if s.speaker == nil {
		return nil, nil
	}
	return s.speaker.SpeakClosing(ctx, instruction)
}

func (s *Session) teardown(ctx context.Context) bool {
	if s.rooms == nil {
		return true
	}
	if err := s.rooms.DeleteRoom(ctx, s.room); err != nil {
		recordedErr := fmt.Errorf("failed to delete room: %w", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		logger.Error("room teardown failed", "session", s.id, "room", s.room, "error", recordedErr)
		return false
	}
	return true
}

// TTSSpeaker adapts a speech synthesizer into the closing utterance Speaker.
// The goodbye is spoken with interruptions disabled.
type TTSSpeaker struct {
	Synthesizer texttospeech.Synthesizer
	Voice       string
}

func (t TTSSpeaker) SpeakClosing(ctx context.Context, instruction string) (session.PlayoutHandle, error) {
	opts := []texttospeech.SpeakOption{}
	if t.Voice != "" {
		opts = append(opts, texttospeech.WithVoice(t.Voice))
	}
	handle, err := t.Synthesizer.Speak(ctx, instruction, opts...)
	if err != nil {
		return nil, err
	}
	return handle, nil
}
