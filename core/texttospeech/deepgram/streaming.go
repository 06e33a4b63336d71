package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/speakbright/agent-core/core/texttospeech"
)

type websocketMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)

func speakMsg(text string) websocketMessage {
	return websocketMessage{Type: "Speak", Text: text}
}

// Speak synthesizes one utterance. The returned handle completes when
// Deepgram confirms the full utterance has been flushed.
func (s *Synthesizer) Speak(ctx context.Context, text string, opts ...texttospeech.SpeakOption) (texttospeech.Handle, error) {
	options := texttospeech.SpeakOptions{
		AudioCallback: func([]byte) {},
	}
	for _, opt := range opts {
		opt(&options)
	}

	voice := s.voice
	if options.Voice != "" {
		voice = Voice(options.Voice)
	}

	streamURL, err := s.streamURL(voice)
	if err != nil {
		return nil, err
	}

	conn, _, err := s.dialer.DialContext(ctx, streamURL,
		http.Header{"Authorization": {"token " + s.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	u := &utterance{conn: conn, done: make(chan struct{})}
	if err := u.send(speakMsg(text)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send utterance text: %w", err)
	}
	if err := u.send(flushMsg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to flush utterance: %w", err)
	}

	go u.readLoop(options.AudioCallback)
	if options.Interruptible {
		go u.watchInterrupt(ctx)
	}

	logger.Info("speaking utterance", "voice", string(voice), "chars", len(text))
	return u, nil
}

// utterance is one in-flight Speak call and its playout state.
type utterance struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	done     chan struct{}
	settle   sync.Once
	finalErr error
}

func (u *utterance) AwaitCompletion(ctx context.Context) bool {
	select {
	case <-u.done:
		return u.finalErr == nil
	case <-ctx.Done():
		return false
	}
}

func (u *utterance) Err() error {
	select {
	case <-u.done:
		return u.finalErr
	default:
		return nil
	}
}

func (u *utterance) send(msg websocketMessage) error {
	u.writeMu.Lock()
	defer u.writeMu.Unlock()
	if err := u.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}

// complete settles the utterance exactly once and tears the socket down.
func (u *utterance) complete(err error) {
	u.settle.Do(func() {
		u.finalErr = err
		_ = u.send(closeMsg)
		u.conn.Close()
		close(u.done)
	})
}

// watchInterrupt cuts an interruptible utterance short when its context is
// cancelled: Deepgram discards any audio it has not yet delivered and the
// playout settles as incomplete. Uninterruptible utterances never start this
// watcher and play out regardless of the caller's context.
func (u *utterance) watchInterrupt(ctx context.Context) {
	select {
	case <-ctx.Done():
		_ = u.send(clearMsg)
		logger.Info("utterance interrupted")
		u.complete(ctx.Err())
	case <-u.done:
	}
}

func (u *utterance) readLoop(audioCallback func([]byte)) {
	for {
		msgType, msg, err := u.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				u.complete(nil)
			} else {
				logger.Warn("websocket read error", "error", err)
				u.complete(err)
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if len(msg) > 0 {
				audioCallback(msg)
			}
		case websocket.TextMessage:
			var parsedMsg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				logger.Warn("failed to unmarshal deepgram message", "error", err)
				continue
			}

			switch parsedMsg.Type {
			case "Flushed":
				// The full utterance has been generated and delivered.
				u.complete(nil)
				return
			case "Warning":
				logger.Warn("deepgram warning", "message", string(msg))
			}
		}
	}
}
