package englishtutor

import "github.com/speakbright/agent-core/core/session"

// MaxSessionDuration caps a tutoring session at five minutes.
const MaxSessionDuration = 300

// TimingConfig returns the tutor's checkpoint schedule: a silent wrap-up
// nudge at 4.5 minutes and the hard cutoff at 5.
func TimingConfig() session.TimingConfig {
	return session.TimingConfig{
		MaxDuration: MaxSessionDuration,
		Checkpoints: []session.Checkpoint{
			{
				Offset: 270,
				Notify: true,
				Instruction: "You've been conversing for 4.5 minutes now. " +
					"Start thinking about wrapping up the conversation naturally " +
					"in the next 30 seconds, but don't mention time or ending " +
					"to the student yet.",
			},
			{
				Offset:   MaxSessionDuration,
				Notify:   true,
				Terminal: true,
			},
		},
	}
}

const goodbyeInstruction = "Provide a brief, warm closing with feedback for the student " +
	"as given in your system prompt. " +
	"Do NOT mention that time is up or that the session is ending. " +
	"Keep it under 20 seconds."
