// Package deepgram implements speech synthesis over Deepgram's streaming
// text-to-speech websocket API.
package deepgram

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/speakbright/agent-core/core/texttospeech"
)

type Voice string

const (
	VoiceAsteria Voice = "aura-asteria-en"
	VoiceLuna    Voice = "aura-luna-en"
	VoiceOrion   Voice = "aura-orion-en"
	VoiceArcas   Voice = "aura-arcas-en"
)

const defaultVoice = VoiceAsteria

func AvailableVoices() []Voice {
	return []Voice{VoiceAsteria, VoiceLuna, VoiceOrion, VoiceArcas}
}

const defaultEndpoint = "wss://api.deepgram.com/v1/speak"

// Synthesizer speaks through Deepgram's streaming TTS API. Each utterance
// opens its own websocket so a cancelled utterance cannot corrupt the next
// one's stream.
type Synthesizer struct {
	apiKey   string
	endpoint string
	voice    Voice
	encoding texttospeech.EncodingInfo
	dialer   *websocket.Dialer
}

type Option func(*Synthesizer)

// WithVoice sets the default voice for all utterances.
func WithVoice(voice Voice) Option {
	return func(s *Synthesizer) { s.voice = voice }
}

// WithEncoding overrides the produced audio format.
func WithEncoding(encoding texttospeech.EncodingInfo) Option {
	return func(s *Synthesizer) {
		if encoding.Encoding == "" || encoding.SampleRate == 0 {
			return
		}
		s.encoding = encoding
	}
}

// WithEndpoint overrides the websocket endpoint, for tests.
func WithEndpoint(endpoint string) Option {
	return func(s *Synthesizer) { s.endpoint = endpoint }
}

// NewSynthesizer builds a synthesizer using the DEEPGRAM_API_KEY environment
// variable for authentication.
func NewSynthesizer(opts ...Option) (*Synthesizer, error) {
	apiKey := os.Getenv("DEEPGRAM_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	s := &Synthesizer{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		voice:    defaultVoice,
		encoding: texttospeech.DefaultEncoding,
		dialer:   websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !slices.Contains(AvailableVoices(), s.voice) {
		return nil, fmt.Errorf("invalid voice %q", s.voice)
	}
	return s, nil
}

func (s *Synthesizer) streamURL(voice Voice) (string, error) {
	base, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid deepgram endpoint: %w", err)
	}

	values := url.Values{}
	values.Set("encoding", s.encoding.Encoding)
	values.Set("sample_rate", strconv.Itoa(s.encoding.SampleRate))
	values.Set("model", string(voice))
	values.Set("container", "none")
	base.RawQuery = values.Encode()

	return base.String(), nil
}
