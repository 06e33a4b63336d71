package session

import "time"

// EventType discriminates observer notification payloads.
type EventType string

const (
	EventTimeCheckpoint EventType = "time_checkpoint"
	EventSessionStatus  EventType = "session_status"
)

// Status is the session state carried by a notification.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusEnding     Status = "ending"
	StatusEnded      Status = "ended"
)

// Reason describes what caused a notification to be emitted.
type Reason string

const (
	ReasonCheckpoint Reason = "checkpoint"
	ReasonTimeout    Reason = "timeout"
)

// timestampLayout matches the frontend contract: ISO-8601 UTC with
// millisecond precision and a literal Z suffix.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// CheckpointMetadata is the full metadata block attached to time_checkpoint
// events.
type CheckpointMetadata struct {
	ElapsedSeconds   int  `json:"elapsed_seconds"`
	RemainingSeconds int  `json:"remaining_seconds"`
	CheckpointIndex  int  `json:"checkpoint_index"`
	TotalDuration    int  `json:"total_duration"`
	IsFinal          bool `json:"is_final"`
}

// StatusMetadata is the partial metadata attached to session_status events.
type StatusMetadata struct {
	DurationSeconds int `json:"duration_seconds"`
}

// Event is the observer notification payload delivered over the data channel.
type Event struct {
	Type      EventType `json:"type"`
	Status    Status    `json:"status"`
	Reason    Reason    `json:"reason,omitempty"`
	Timestamp string    `json:"timestamp"`
	Metadata  any       `json:"metadata,omitempty"`
}

// Publisher is the observer notification sink. Publishing is fire and forget;
// implementations log their own failures.
type Publisher interface {
	Publish(event Event)
}

// NewCheckpointEvent builds the notification for a checkpoint firing. A
// terminal checkpoint reports status "ending", all others "in_progress".
func NewCheckpointEvent(config TimingConfig, checkpoint Checkpoint, index int) Event {
	status := StatusInProgress
	if checkpoint.Terminal {
		status = StatusEnding
	}

	return Event{
		Type:      EventTimeCheckpoint,
		Status:    status,
		Reason:    ReasonCheckpoint,
		Timestamp: eventTimestamp(),
		Metadata: CheckpointMetadata{
			ElapsedSeconds:   checkpoint.Offset,
			RemainingSeconds: config.Remaining(checkpoint),
			CheckpointIndex:  index,
			TotalDuration:    config.MaxDuration,
			IsFinal:          checkpoint.Terminal,
		},
	}
}

// NewStatusEvent builds a session_status notification.
func NewStatusEvent(status Status, reason Reason, durationSeconds int) Event {
	return Event{
		Type:      EventSessionStatus,
		Status:    status,
		Reason:    reason,
		Timestamp: eventTimestamp(),
		Metadata:  StatusMetadata{DurationSeconds: durationSeconds},
	}
}

func eventTimestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}
