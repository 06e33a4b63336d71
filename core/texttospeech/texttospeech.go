// Package texttospeech defines the speech synthesis surface sessions use to
// voice agent utterances.
package texttospeech

import "context"

// EncodingInfo describes the audio format a synthesizer produces.
type EncodingInfo struct {
	Encoding   string
	SampleRate int
}

// DefaultEncoding is 16-bit linear PCM at 24kHz, the format the media plane
// plays out directly.
var DefaultEncoding = EncodingInfo{Encoding: "linear16", SampleRate: 24000}

// Handle tracks one utterance from synthesis through playout.
type Handle interface {
	// AwaitCompletion blocks until the utterance has fully played out or ctx
	// is done, reporting whether playout completed.
	AwaitCompletion(ctx context.Context) bool
	// Err reports the synthesis error, if any, once playout has settled.
	Err() error
}

// Synthesizer turns text into speech audio. Each Speak call is an
// independent utterance with its own playout handle.
type Synthesizer interface {
	Speak(ctx context.Context, text string, opts ...SpeakOption) (Handle, error)
}
