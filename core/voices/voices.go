// Package voices maps gender preferences to realtime speech voices.
package voices

import "strings"

// DefaultVoice is used when no preference was given or the preference is
// unrecognized.
const DefaultVoice = "alloy"

var voiceByPreference = map[string]string{
	"male":          "ash",
	"female":        "shimmer",
	"no_preference": "alloy",
}

// Select picks a voice for the given gender preference. Unknown or empty
// preferences fall back to DefaultVoice.
func Select(genderPreference string) string {
	if genderPreference == "" {
		logger.Info("no gender preference, using default voice", "voice", DefaultVoice)
		return DefaultVoice
	}

	voice, ok := voiceByPreference[strings.ToLower(genderPreference)]
	if !ok {
		logger.Warn("unrecognized gender preference, using default voice",
			"preference", genderPreference,
			"voice", DefaultVoice,
		)
		return DefaultVoice
	}

	logger.Info("selected voice", "voice", voice, "preference", genderPreference)
	return voice
}
