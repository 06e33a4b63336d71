package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Callbacks are the contracts the checkpoint monitor drives. OnNotify and
// OnCheckpoint failures are contained; an OnTerminal failure is the timer's
// own failure and is surfaced through [Timer.Err].
type Callbacks struct {
	// OnNotify is invoked synchronously for every checkpoint with Notify
	// set, before the terminal/non-terminal branch is taken, so observers
	// always see the checkpoint before any shutdown effects.
	OnNotify func(checkpoint Checkpoint, index int)
	// OnCheckpoint is invoked for non-terminal checkpoints that carry an
	// instruction. Errors are logged and monitoring continues.
	OnCheckpoint func(checkpoint Checkpoint, index int) error
	// OnTerminal is invoked for the first terminal checkpoint. No further
	// checkpoints are processed afterwards, even if more are configured.
	OnTerminal func() error
	// IsActive is re-checked after every wake. Once it reports false the
	// remaining checkpoints are skipped; this is early termination, not an
	// error.
	IsActive func() bool
}

// Timer monitors a session's checkpoint schedule on a single background
// goroutine, sleeping until each checkpoint's offset elapses relative to the
// instant Start was called.
type Timer struct {
	config TimingConfig
	name   string

	// tick is the real duration of one checkpoint offset unit. One second
	// unless overridden with WithTick.
	tick time.Duration

	startedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool

	err atomic.Value
}

type TimerOption func(*Timer)

// WithTimerName labels the timer's log lines and spans, typically with the
// owning agent's name.
func WithTimerName(name string) TimerOption {
	return func(t *Timer) { t.name = name }
}

// WithTick overrides the real duration of one checkpoint offset unit. The
// default is one second; anything else compresses or stretches the whole
// schedule.
func WithTick(tick time.Duration) TimerOption {
	return func(t *Timer) {
		if tick > 0 {
			t.tick = tick
		}
	}
}

func NewTimer(config TimingConfig, opts ...TimerOption) *Timer {
	t := &Timer{
		config: config,
		name:   "session",
		tick:   time.Second,
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Start begins background monitoring with the current instant as time zero.
//
// Contract: call Start at most once per timer instance. Subsequent calls are
// no-ops.
func (t *Timer) Start(ctx context.Context, callbacks Callbacks) {
	t.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		t.cancel = cancel
		t.startedAt = time.Now()
		t.started.Store(true)

		logger.Info("session timer started",
			"session", t.name,
			"checkpoints", len(t.config.Checkpoints),
		)

		go func() {
			defer close(t.done)
			t.monitor(ctx, callbacks)
		}()
	})
}

// Stop cancels the monitor cooperatively and waits for it to exit, so no
// callback can fire after Stop returns. Safe to call repeatedly and before
// Start.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		if !t.started.Load() {
			return
		}
		t.cancel()
		<-t.done
	})
}

// Wait blocks until the monitor goroutine has exited, either by reaching the
// terminal checkpoint, losing liveness, or being stopped.
func (t *Timer) Wait() {
	if !t.started.Load() {
		return
	}
	<-t.done
}

// Elapsed reports time since Start, zero beforehand.
func (t *Timer) Elapsed() time.Duration {
	if !t.started.Load() {
		return 0
	}
	return time.Since(t.startedAt)
}

// Err reports a terminal-callback failure, if any. Meaningful once the
// monitor has exited.
func (t *Timer) Err() error {
	if err, ok := t.err.Load().(error); ok {
		return err
	}
	return nil
}

func (t *Timer) monitor(ctx context.Context, callbacks Callbacks) {
	ctx, span := tracer.Start(ctx, "checkpoint monitor")
	defer span.End()

	for index, checkpoint := range t.config.Checkpoints {
		// Waits are computed from actual elapsed time rather than by
		// accumulating sleeps, so delay in earlier callbacks cannot drift
		// the schedule.
		wait := time.Duration(checkpoint.Offset)*t.tick - t.Elapsed()
		if wait > 0 {
			select {
			case <-ctx.Done():
				logger.Info("checkpoint monitor cancelled", "session", t.name)
				return
			case <-time.After(wait):
			}
		} else if ctx.Err() != nil {
			logger.Info("checkpoint monitor cancelled", "session", t.name)
			return
		}

		if callbacks.IsActive != nil && !callbacks.IsActive() {
			logger.Info("session ended before checkpoint",
				"session", t.name,
				"checkpoint", index+1,
			)
			return
		}

		if checkpoint.Notify && callbacks.OnNotify != nil {
			t.notify(ctx, callbacks.OnNotify, checkpoint, index)
		}

		if checkpoint.Terminal {
			logger.Warn("terminal checkpoint reached",
				"session", t.name,
				"offset_seconds", checkpoint.Offset,
			)
			if callbacks.OnTerminal != nil {
				if err := runGuarded("terminal checkpoint", func() error { return callbacks.OnTerminal() }); err != nil {
					err = fmt.Errorf("terminal checkpoint handling failed: %w", err)
					t.err.Store(err)
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
				}
			}
			return
		}

		if checkpoint.Instruction != "" && callbacks.OnCheckpoint != nil {
			if err := runGuarded("checkpoint", func() error { return callbacks.OnCheckpoint(checkpoint, index) }); err != nil {
				err = fmt.Errorf("checkpoint %d handling failed: %w", index+1, err)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				logger.Error("checkpoint handling failed",
					"session", t.name,
					"checkpoint", index+1,
					"error", err,
				)
			}
		}
	}
}

func (t *Timer) notify(ctx context.Context, onNotify func(Checkpoint, int), checkpoint Checkpoint, index int) {
	if err := runGuarded("checkpoint notification", func() error {
		onNotify(checkpoint, index)
		return nil
	}); err != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("checkpoint notification failed",
			"session", t.name,
			"checkpoint", index+1,
			"error", err,
		)
	}
}

func runGuarded(name string, run func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%s callback panicked: %v", name, recovered)
		}
	}()

	return run()
}
