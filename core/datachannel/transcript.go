package datachannel

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptRole identifies who produced a transcript line.
type TranscriptRole string

const (
	RoleAgent TranscriptRole = "agent"
	RoleUser  TranscriptRole = "user"
)

// TranscriptMessage is one finalized line of the conversation, sent to
// observers as it is produced.
type TranscriptMessage struct {
	Type      string         `json:"type"`
	ID        string         `json:"id"`
	Role      TranscriptRole `json:"role"`
	Text      string         `json:"text"`
	Timestamp string         `json:"timestamp"`
}

// NewTranscriptMessage builds a transcript line with a fresh id and the
// current UTC timestamp.
func NewTranscriptMessage(role TranscriptRole, text string) TranscriptMessage {
	return TranscriptMessage{
		Type:      "transcript",
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}
