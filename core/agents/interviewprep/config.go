package interviewprep

import "github.com/speakbright/agent-core/core/session"

// MaxSessionDuration caps a mock interview at fifteen minutes.
const MaxSessionDuration = 900

// TimingConfig returns the interview schedule: a silent wrap-up nudge at
// 13.5 minutes and the hard cutoff at 15.
func TimingConfig() session.TimingConfig {
	return session.TimingConfig{
		MaxDuration: MaxSessionDuration,
		Checkpoints: []session.Checkpoint{
			{
				Offset: 810,
				Notify: true,
				Instruction: "You've been conducting the interview for 13.5 minutes now. " +
					"Start thinking about wrapping up in the next 90 seconds, " +
					"but don't mention time or ending to the candidate yet.",
			},
			{
				Offset:   MaxSessionDuration,
				Notify:   true,
				Terminal: true,
			},
		},
	}
}

const goodbyeInstruction = "Provide a brief, warm closing with feedback for the candidate. " +
	"Do NOT mention that time is up or the interview is ending. " +
	"Give one sentence of constructive feedback about their performance, " +
	"then thank them and wish them well. " +
	"Keep it under 20 seconds."
