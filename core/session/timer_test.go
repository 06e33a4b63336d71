package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func tutorStyleConfig() TimingConfig {
	return TimingConfig{
		MaxDuration: 300,
		Checkpoints: []Checkpoint{
			{Offset: 270, Notify: true, Instruction: "start wrapping up", Terminal: false},
			{Offset: 300, Notify: true, Terminal: true},
		},
	}
}

type timerRecorder struct {
	mu       sync.Mutex
	events   []string
	notified []Checkpoint

	terminal chan struct{}
	finished chan struct{}
}

func newTimerRecorder() *timerRecorder {
	return &timerRecorder{
		terminal: make(chan struct{}),
		finished: make(chan struct{}, 1),
	}
}

func (r *timerRecorder) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *timerRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]string, len(r.events))
	copy(events, r.events)
	return events
}

func (r *timerRecorder) callbacks(isActive func() bool) Callbacks {
	if isActive == nil {
		isActive = func() bool { return true }
	}
	return Callbacks{
		OnNotify: func(checkpoint Checkpoint, index int) {
			r.mu.Lock()
			r.notified = append(r.notified, checkpoint)
			r.mu.Unlock()
			r.record(fmt.Sprintf("notify %d", index))
		},
		OnCheckpoint: func(checkpoint Checkpoint, index int) error {
			r.record(fmt.Sprintf("checkpoint %d", index))
			return nil
		},
		OnTerminal: func() error {
			r.record("terminal")
			close(r.terminal)
			return nil
		},
		IsActive: isActive,
	}
}

func TestTimerFiresCheckpointsInOrderAndStopsAtTerminal(t *testing.T) {
	config := TimingConfig{
		MaxDuration: 5,
		Checkpoints: []Checkpoint{
			{Offset: 1, Notify: true, Instruction: "one"},
			{Offset: 2, Notify: true, Instruction: "two"},
			{Offset: 3, Notify: true, Terminal: true},
			{Offset: 4, Notify: true, Instruction: "never"},
		},
	}

	recorder := newTimerRecorder()
	timer := NewTimer(config, WithTick(5*time.Millisecond))
	timer.Start(context.Background(), recorder.callbacks(nil))
	defer timer.Stop()

	select {
	case <-recorder.terminal:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for terminal checkpoint")
	}
	timer.Wait()

	want := []string{"notify 0", "checkpoint 0", "notify 1", "checkpoint 1", "notify 2", "terminal"}
	got := recorder.recorded()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
	if err := timer.Err(); err != nil {
		t.Fatalf("expected no timer error, got %v", err)
	}
}

func TestTimerNotifiesTerminalCheckpointBeforeTerminalCallback(t *testing.T) {
	recorder := newTimerRecorder()
	timer := NewTimer(tutorStyleConfig(), WithTick(time.Millisecond))
	timer.Start(context.Background(), recorder.callbacks(nil))
	defer timer.Stop()

	select {
	case <-recorder.terminal:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for terminal checkpoint")
	}
	timer.Wait()

	got := recorder.recorded()
	if len(got) != 4 {
		t.Fatalf("expected 4 events, got %v", got)
	}
	if got[0] != "notify 0" || got[1] != "checkpoint 0" {
		t.Fatalf("expected the non-terminal checkpoint first, got %v", got)
	}
	if got[2] != "notify 1" || got[3] != "terminal" {
		t.Fatalf("expected terminal notification before the terminal callback, got %v", got)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if recorder.notified[0].Offset != 270 {
		t.Fatalf("expected first notification at offset 270, got %d", recorder.notified[0].Offset)
	}
	if recorder.notified[1].Offset != 300 || !recorder.notified[1].Terminal {
		t.Fatalf("expected terminal notification at offset 300, got %+v", recorder.notified[1])
	}
}

func TestTimerSkipsRemainingCheckpointsOnceInactive(t *testing.T) {
	recorder := newTimerRecorder()
	timer := NewTimer(tutorStyleConfig(), WithTick(time.Millisecond))
	timer.Start(context.Background(), recorder.callbacks(func() bool { return false }))
	defer timer.Stop()

	done := make(chan struct{})
	go func() {
		timer.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for monitor to exit")
	}

	if got := recorder.recorded(); len(got) != 0 {
		t.Fatalf("expected no events for an inactive session, got %v", got)
	}
}

func TestTimerStopCancelsPendingWait(t *testing.T) {
	config := TimingConfig{
		MaxDuration: 600,
		Checkpoints: []Checkpoint{
			{Offset: 600, Notify: true, Terminal: true},
		},
	}

	recorder := newTimerRecorder()
	timer := NewTimer(config) // real one-second ticks; Stop must interrupt the wait
	timer.Start(context.Background(), recorder.callbacks(nil))

	stopped := make(chan struct{})
	go func() {
		timer.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for Stop to return")
	}

	if got := recorder.recorded(); len(got) != 0 {
		t.Fatalf("expected no events after cancellation, got %v", got)
	}
}

func TestTimerStopBeforeStartIsNoop(t *testing.T) {
	timer := NewTimer(tutorStyleConfig())
	timer.Stop()
	timer.Wait()

	if elapsed := timer.Elapsed(); elapsed != 0 {
		t.Fatalf("expected zero elapsed before start, got %v", elapsed)
	}
}

func TestTimerCheckpointErrorDoesNotAbortMonitoring(t *testing.T) {
	recorder := newTimerRecorder()
	callbacks := recorder.callbacks(nil)
	callbacks.OnCheckpoint = func(Checkpoint, int) error {
		return fmt.Errorf("delivery rejected")
	}

	timer := NewTimer(tutorStyleConfig(), WithTick(time.Millisecond))
	timer.Start(context.Background(), callbacks)
	defer timer.Stop()

	select {
	case <-recorder.terminal:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected terminal checkpoint despite checkpoint error")
	}
	timer.Wait()

	if err := timer.Err(); err != nil {
		t.Fatalf("checkpoint errors must not become timer errors, got %v", err)
	}
}

func TestTimerSurfacesTerminalCallbackFailure(t *testing.T) {
	recorder := newTimerRecorder()
	callbacks := recorder.callbacks(nil)
	callbacks.OnTerminal = func() error {
		return fmt.Errorf("shutdown contract broken")
	}

	timer := NewTimer(tutorStyleConfig(), WithTick(time.Millisecond))
	timer.Start(context.Background(), callbacks)
	defer timer.Stop()

	timer.Wait()

	if err := timer.Err(); err == nil {
		t.Fatalf("expected terminal callback failure to surface")
	}
}

func TestTimerRecoversPanickingCheckpointCallback(t *testing.T) {
	recorder := newTimerRecorder()
	callbacks := recorder.callbacks(nil)
	callbacks.OnCheckpoint = func(Checkpoint, int) error {
		panic("callback exploded")
	}

	timer := NewTimer(tutorStyleConfig(), WithTick(time.Millisecond))
	timer.Start(context.Background(), callbacks)
	defer timer.Stop()

	select {
	case <-recorder.terminal:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected monitoring to survive a panicking checkpoint callback")
	}
	timer.Wait()
}

func TestTimerProcessesPastDueCheckpointsImmediately(t *testing.T) {
	config := TimingConfig{
		MaxDuration: 10,
		Checkpoints: []Checkpoint{
			{Offset: 0, Notify: true, Instruction: "kickoff"},
			{Offset: 1, Notify: true, Terminal: true},
		},
	}

	recorder := newTimerRecorder()
	timer := NewTimer(config, WithTick(time.Millisecond))
	timer.Start(context.Background(), recorder.callbacks(nil))
	defer timer.Stop()

	select {
	case <-recorder.terminal:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for terminal checkpoint")
	}
	timer.Wait()

	got := recorder.recorded()
	if len(got) == 0 || got[0] != "notify 0" {
		t.Fatalf("expected the zero-offset checkpoint to fire first, got %v", got)
	}
}
