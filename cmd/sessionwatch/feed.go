package main

import (
	"encoding/json"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/speakbright/agent-core/core/datachannel"
	"github.com/speakbright/agent-core/core/session"
)

const (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

type connectedMsg struct{}

type disconnectedMsg struct{ err error }

type sessionEventMsg struct{ event session.Event }

type transcriptMsg struct{ transcript datachannel.TranscriptMessage }

// feedReader keeps a websocket subscription alive and turns incoming frames
// into Bubble Tea messages.
type feedReader struct {
	url  string
	feed chan<- tea.Msg
}

func newFeedReader(url string, feed chan<- tea.Msg) *feedReader {
	return &feedReader{url: url, feed: feed}
}

func (r *feedReader) run() {
	delay := reconnectBaseDelay
	for {
		conn, _, err := websocket.DefaultDialer.Dial(r.url, nil)
		if err != nil {
			r.feed <- disconnectedMsg{err: err}
			time.Sleep(delay)
			delay = min(delay*2, reconnectMaxDelay)
			continue
		}

		delay = reconnectBaseDelay
		r.feed <- connectedMsg{}

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				conn.Close()
				r.feed <- disconnectedMsg{err: err}
				break
			}
			if msg, ok := parseFrame(raw); ok {
				r.feed <- msg
			}
		}
	}
}

// parseFrame discriminates the two payload shapes the worker broadcasts.
func parseFrame(raw []byte) (tea.Msg, bool) {
	var discriminator struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &discriminator); err != nil {
		return nil, false
	}

	switch discriminator.Type {
	case "transcript":
		var transcript datachannel.TranscriptMessage
		if err := json.Unmarshal(raw, &transcript); err != nil {
			return nil, false
		}
		return transcriptMsg{transcript: transcript}, true
	default:
		var event session.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, false
		}
		return sessionEventMsg{event: event}, true
	}
}
