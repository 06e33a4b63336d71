package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type completedPlayout struct{}

func (completedPlayout) AwaitCompletion(context.Context) bool { return true }

type stalledPlayout struct{}

func (stalledPlayout) AwaitCompletion(ctx context.Context) bool {
	<-ctx.Done()
	return false
}

type shutdownRecorder struct {
	mu    sync.Mutex
	order []string

	notified  atomic.Int32
	spoken    atomic.Int32
	tornDown  atomic.Int32
	playout   PlayoutHandle
	speakErr  error
	instructs []string
	reasons   []Reason
}

func (r *shutdownRecorder) hooks() ShutdownHooks {
	return ShutdownHooks{
		NotifyEnding: func(reason Reason, _ int) {
			r.notified.Add(1)
			r.mu.Lock()
			r.order = append(r.order, "notify")
			r.reasons = append(r.reasons, reason)
			r.mu.Unlock()
		},
		Speak: func(_ context.Context, instruction string) (PlayoutHandle, error) {
			r.spoken.Add(1)
			r.mu.Lock()
			r.order = append(r.order, "speak")
			r.instructs = append(r.instructs, instruction)
			r.mu.Unlock()
			if r.speakErr != nil {
				return nil, r.speakErr
			}
			return r.playout, nil
		},
		Teardown: func(context.Context) bool {
			r.tornDown.Add(1)
			r.mu.Lock()
			r.order = append(r.order, "teardown")
			r.mu.Unlock()
			return true
		},
	}
}

func TestGracefulShutdownRunsSequenceOnce(t *testing.T) {
	recorder := &shutdownRecorder{playout: completedPlayout{}}
	coordinator := NewCoordinator(recorder.hooks(),
		WithTotalDuration(300),
		WithClosingInstruction("say goodbye"),
	)

	if !coordinator.GracefulShutdown(context.Background(), ReasonTimeout) {
		t.Fatalf("expected the first caller to perform the shutdown")
	}

	if !coordinator.IsEnded() {
		t.Fatalf("expected state ended, got %v", coordinator.State())
	}
	if got := recorder.notified.Load(); got != 1 {
		t.Fatalf("expected exactly one ending notification, got %d", got)
	}
	if got := recorder.spoken.Load(); got != 1 {
		t.Fatalf("expected exactly one closing utterance, got %d", got)
	}
	if got := recorder.tornDown.Load(); got != 1 {
		t.Fatalf("expected exactly one teardown, got %d", got)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.order) != 3 || recorder.order[0] != "notify" || recorder.order[1] != "speak" || recorder.order[2] != "teardown" {
		t.Fatalf("expected notify, speak, teardown in order, got %v", recorder.order)
	}
	if len(recorder.instructs) != 1 || recorder.instructs[0] != "say goodbye" {
		t.Fatalf("expected closing instruction to reach the speaker, got %v", recorder.instructs)
	}
}

func TestGracefulShutdownReasonReachesNotification(t *testing.T) {
	timedOut := &shutdownRecorder{}
	NewCoordinator(timedOut.hooks()).GracefulShutdown(context.Background(), ReasonTimeout)
	timedOut.mu.Lock()
	if len(timedOut.reasons) != 1 || timedOut.reasons[0] != ReasonTimeout {
		t.Fatalf("expected a timeout reason, got %v", timedOut.reasons)
	}
	timedOut.mu.Unlock()

	// A manual end carries no reason.
	manual := &shutdownRecorder{}
	NewCoordinator(manual.hooks()).GracefulShutdown(context.Background(), "")
	manual.mu.Lock()
	if len(manual.reasons) != 1 || manual.reasons[0] != "" {
		t.Fatalf("expected an empty reason for a manual end, got %v", manual.reasons)
	}
	manual.mu.Unlock()
}

func TestGracefulShutdownConcurrentCallersRunExactlyOnce(t *testing.T) {
	recorder := &shutdownRecorder{playout: completedPlayout{}}
	coordinator := NewCoordinator(recorder.hooks())

	const callers = 8
	var winners atomic.Int32
	wg := sync.WaitGroup{}
	wg.Add(callers)
	for range callers {
		go func() {
			defer wg.Done()
			if coordinator.GracefulShutdown(context.Background(), ReasonTimeout) {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := winners.Load(); got != 1 {
		t.Fatalf("expected exactly one caller to win the shutdown race, got %d", got)
	}
	if got := recorder.notified.Load(); got != 1 {
		t.Fatalf("expected exactly one ending notification, got %d", got)
	}
	if got := recorder.tornDown.Load(); got != 1 {
		t.Fatalf("expected exactly one teardown, got %d", got)
	}
	if !coordinator.IsEnded() {
		t.Fatalf("expected state ended, got %v", coordinator.State())
	}
}

func TestGracefulShutdownAfterEndedIsNoop(t *testing.T) {
	recorder := &shutdownRecorder{playout: completedPlayout{}}
	coordinator := NewCoordinator(recorder.hooks())

	coordinator.GracefulShutdown(context.Background(), ReasonTimeout)
	if coordinator.GracefulShutdown(context.Background(), ReasonTimeout) {
		t.Fatalf("expected repeat shutdown to be a no-op")
	}

	if got := recorder.notified.Load(); got != 1 {
		t.Fatalf("expected no additional notifications, got %d", got)
	}
	if got := recorder.tornDown.Load(); got != 1 {
		t.Fatalf("expected no additional teardown calls, got %d", got)
	}
}

func TestGracefulShutdownPlayoutTimeoutStillEndsAndTearsDown(t *testing.T) {
	recorder := &shutdownRecorder{playout: stalledPlayout{}}
	coordinator := NewCoordinator(recorder.hooks(), WithPlayoutTimeout(30*time.Millisecond))

	started := time.Now()
	coordinator.GracefulShutdown(context.Background(), ReasonTimeout)
	took := time.Since(started)

	if !coordinator.IsEnded() {
		t.Fatalf("expected state ended after playout timeout, got %v", coordinator.State())
	}
	if got := recorder.tornDown.Load(); got != 1 {
		t.Fatalf("expected teardown despite playout timeout, got %d calls", got)
	}
	if took < 30*time.Millisecond {
		t.Fatalf("expected shutdown to wait out the playout timeout, took %v", took)
	}
	if took > time.Second {
		t.Fatalf("expected shutdown to proceed shortly after the timeout, took %v", took)
	}
}

func TestGracefulShutdownSpeakFailureStillEnds(t *testing.T) {
	recorder := &shutdownRecorder{speakErr: fmt.Errorf("synthesis unavailable")}
	coordinator := NewCoordinator(recorder.hooks())

	coordinator.GracefulShutdown(context.Background(), ReasonTimeout)

	if !coordinator.IsEnded() {
		t.Fatalf("expected state ended after speak failure, got %v", coordinator.State())
	}
	if got := recorder.tornDown.Load(); got != 0 {
		t.Fatalf("expected teardown to be skipped after a failed sequence, got %d calls", got)
	}
}

func TestGracefulShutdownPanicStillEnds(t *testing.T) {
	hooks := ShutdownHooks{
		NotifyEnding: func(Reason, int) { panic("publisher exploded") },
	}
	coordinator := NewCoordinator(hooks)

	coordinator.GracefulShutdown(context.Background(), ReasonTimeout)

	if !coordinator.IsEnded() {
		t.Fatalf("expected state ended after panic, got %v", coordinator.State())
	}
}

func TestCoordinatorStateQueries(t *testing.T) {
	coordinator := NewCoordinator(ShutdownHooks{})

	if coordinator.IsEnding() || coordinator.IsEnded() {
		t.Fatalf("expected a fresh coordinator to be active")
	}
	if !coordinator.markEnding() {
		t.Fatalf("expected the first markEnding to win")
	}
	if !coordinator.IsEnding() {
		t.Fatalf("expected state ending, got %v", coordinator.State())
	}
	if coordinator.markEnding() {
		t.Fatalf("expected markEnding to fail once past active")
	}

	coordinator.markEnded()
	if !coordinator.IsEnded() {
		t.Fatalf("expected state ended, got %v", coordinator.State())
	}
	coordinator.markEnded() // idempotent
	if coordinator.markEnding() {
		t.Fatalf("no transition may leave the ended state")
	}
}

func TestForceEndedSkipsShutdownSequence(t *testing.T) {
	spoke := false
	toreDown := false
	coordinator := NewCoordinator(ShutdownHooks{
		Speak: func(ctx context.Context, text string) (PlayoutHandle, error) {
			spoke = true
			return nil, nil
		},
		Teardown: func(ctx context.Context) bool {
			toreDown = true
			return true
		},
	})

	if !coordinator.ForceEnded() {
		t.Fatalf("expected the first ForceEnded to report a transition")
	}
	if !coordinator.IsEnded() {
		t.Fatalf("expected state ended, got %v", coordinator.State())
	}
	if coordinator.ForceEnded() {
		t.Fatalf("expected a repeat ForceEnded to report no transition")
	}
	if spoke || toreDown {
		t.Fatalf("expected no shutdown hooks to run")
	}

	if coordinator.GracefulShutdown(context.Background(), ReasonTimeout) {
		t.Fatalf("expected graceful shutdown after ForceEnded to be a no-op")
	}
	if spoke || toreDown {
		t.Fatalf("expected graceful shutdown after ForceEnded to run no hooks")
	}
}
