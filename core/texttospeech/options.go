package texttospeech

type SpeakOptions struct {
	// AudioCallback is called for each chunk of synthesized audio.
	AudioCallback func(audio []byte)
	// Voice overrides the synthesizer's configured voice for this utterance.
	Voice string
	// Interruptible marks utterances the user may barge in on. Closing
	// utterances are spoken with this off.
	Interruptible bool
}

type SpeakOption func(*SpeakOptions)

// WithAudioCallback sets the callback for synthesized audio chunks.
func WithAudioCallback(callback func([]byte)) SpeakOption {
	return func(o *SpeakOptions) { o.AudioCallback = callback }
}

// WithVoice overrides the voice for a single utterance.
func WithVoice(voice string) SpeakOption {
	return func(o *SpeakOptions) { o.Voice = voice }
}

// WithInterruptible allows the user to barge in on the utterance.
func WithInterruptible() SpeakOption {
	return func(o *SpeakOptions) { o.Interruptible = true }
}
