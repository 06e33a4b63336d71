package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// State is the lifecycle of one session. There is no transition out of
// StateEnded.
type State int32

const (
	StateActive State = iota
	StateEnding
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateEnding:
		return "ending"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// DefaultPlayoutTimeout bounds the wait for the closing utterance. A closing
// message that never finishes must never block session termination.
const DefaultPlayoutTimeout = 30 * time.Second

// PlayoutHandle represents an in-flight utterance playout.
type PlayoutHandle interface {
	// AwaitCompletion blocks until playout finishes or ctx is done,
	// reporting whether it completed.
	AwaitCompletion(ctx context.Context) bool
}

// ShutdownHooks are the collaborator operations the coordinator drives
// during graceful shutdown. All of them are optional; a nil hook is skipped.
type ShutdownHooks struct {
	// NotifyEnding publishes the "ending" observer notification carrying
	// the trigger's reason and the declared total duration. Fire and
	// forget.
	NotifyEnding func(reason Reason, totalDurationSeconds int)
	// Speak requests an uninterruptible closing utterance and returns its
	// in-flight playout. A nil handle means there is nothing to wait for.
	Speak func(ctx context.Context, instruction string) (PlayoutHandle, error)
	// Teardown releases the session's external resources, typically by
	// deleting the room. Idempotent and best effort.
	Teardown func(ctx context.Context) bool
}

// Coordinator owns a session's lifecycle state and the graceful shutdown
// sequence. It is the only component that mutates the state; everyone else
// reads it through IsEnding/IsEnded.
type Coordinator struct {
	state atomic.Int32

	name               string
	totalDuration      int
	closingInstruction string
	playoutTimeout     time.Duration

	hooks ShutdownHooks
}

type CoordinatorOption func(*Coordinator)

// WithCoordinatorName labels the coordinator's log lines and spans.
func WithCoordinatorName(name string) CoordinatorOption {
	return func(c *Coordinator) { c.name = name }
}

// WithTotalDuration sets the declared session budget reported in the ending
// notification.
func WithTotalDuration(seconds int) CoordinatorOption {
	return func(c *Coordinator) { c.totalDuration = seconds }
}

// WithClosingInstruction sets the instruction passed to the Speak hook.
func WithClosingInstruction(instruction string) CoordinatorOption {
	return func(c *Coordinator) { c.closingInstruction = instruction }
}

// WithPlayoutTimeout overrides DefaultPlayoutTimeout.
func WithPlayoutTimeout(timeout time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.playoutTimeout = timeout
		}
	}
}

func NewCoordinator(hooks ShutdownHooks, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		name:           "session",
		playoutTimeout: DefaultPlayoutTimeout,
		hooks:          hooks,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Coordinator) State() State   { return State(c.state.Load()) }
func (c *Coordinator) IsEnding() bool { return c.State() == StateEnding }
func (c *Coordinator) IsEnded() bool  { return c.State() == StateEnded }

// markEnding succeeds only for the caller that wins the Active to Ending
// race. Once past Active it always fails.
func (c *Coordinator) markEnding() bool {
	return c.state.CompareAndSwap(int32(StateActive), int32(StateEnding))
}

// markEnded is unconditional and idempotent.
func (c *Coordinator) markEnded() {
	c.state.Store(int32(StateEnded))
}

// ForceEnded marks the session ended without running the shutdown sequence,
// for abortive teardown. Reports whether the session was not already ended.
func (c *Coordinator) ForceEnded() bool {
	return c.state.Swap(int32(StateEnded)) != int32(StateEnded)
}

// GracefulShutdown runs the ending sequence: publish the ending
// notification, request the closing utterance, wait (bounded) for its
// playout, mark the session ended, and tear the room down. reason labels
// the trigger in the ending notification; an empty reason means a manual
// end.
//
// It is safe to invoke from multiple concurrent triggers; exactly one caller
// performs the sequence and the rest return immediately. The returned bool
// reports whether this call was the one that performed it.
//
// Whatever happens in the notify/speak/playout phase, the state is forced to
// Ended before returning; a session can never get stuck in Ending.
func (c *Coordinator) GracefulShutdown(ctx context.Context, reason Reason) bool {
	if !c.markEnding() {
		logger.Debug("shutdown already in progress, skipping", "session", c.name)
		return false
	}

	ctx, span := tracer.Start(ctx, "graceful shutdown")
	defer span.End()

	logger.Info("starting graceful shutdown sequence", "session", c.name)

	completed := c.runEndingSequence(ctx, reason)

	c.markEnded()
	logger.Info("session marked as ended", "session", c.name)

	if completed && c.hooks.Teardown != nil {
		if ok := c.hooks.Teardown(ctx); !ok {
			// Best effort only: the session is ended locally either way.
			logger.Warn("session teardown failed", "session", c.name)
		}
	}

	return true
}

func (c *Coordinator) runEndingSequence(ctx context.Context, reason Reason) (completed bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err := fmt.Errorf("graceful shutdown sequence panicked: %v", recovered)
			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error("error during graceful shutdown", "session", c.name, "error", err)
			completed = false
		}
	}()

	if c.hooks.NotifyEnding != nil {
		c.hooks.NotifyEnding(reason, c.totalDuration)
		logger.Info("sent session ending notification", "session", c.name, "reason", string(reason))
	}

	if c.hooks.Speak == nil {
		return true
	}

	handle, err := c.hooks.Speak(ctx, c.closingInstruction)
	if err != nil {
		recordedErr := fmt.Errorf("failed to request closing utterance: %w", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		logger.Error("error during graceful shutdown", "session", c.name, "error", recordedErr)
		return false
	}

	if handle != nil {
		c.awaitPlayout(ctx, handle)
	}

	return true
}

// awaitPlayout waits for the closing utterance with its own timeout,
// independent of any scheduler cancellation. On timeout it proceeds anyway.
func (c *Coordinator) awaitPlayout(ctx context.Context, handle PlayoutHandle) bool {
	ctx, cancel := context.WithTimeout(ctx, c.playoutTimeout)
	defer cancel()

	if handle.AwaitCompletion(ctx) {
		logger.Info("closing utterance playout completed", "session", c.name)
		return true
	}

	logger.Warn("closing utterance playout timed out",
		"session", c.name,
		"timeout", c.playoutTimeout,
	)
	return false
}
